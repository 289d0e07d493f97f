package database

import (
	"errors"
	"fmt"
	"log"

	"broker-notify/internal/config"
	"broker-notify/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

// InitGorm connects to PostgreSQL when DB_HOST is set, otherwise falls back
// to a local sqlite file for development.
func InitGorm(cfg *config.Config) {
	var dialector gorm.Dialector
	if cfg.DBHost != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}

	var err error
	GormDB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = GormDB.AutoMigrate(
		&models.NotificationLog{},
		&models.ProcessedEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database migration completed")
}

// RecordNotification persists a notification log entry. Safe to call before
// InitGorm; the entry is then only logged.
func RecordNotification(entry *models.NotificationLog) {
	if GormDB == nil {
		log.Printf("No database configured, skipping notification log for order %s", entry.OrderID)
		return
	}
	if err := GormDB.Create(entry).Error; err != nil {
		log.Printf("Error saving notification log for order %s: %v", entry.OrderID, err)
	}
}

// UpdateGatewayStatus updates the delivery state reported by the gateway
// webhook for a previously logged message.
func UpdateGatewayStatus(messageID, status string) {
	if GormDB == nil || messageID == "" {
		return
	}
	res := GormDB.Model(&models.NotificationLog{}).
		Where("gateway_message_id = ?", messageID).
		Update("gateway_status", status)
	if res.Error != nil {
		log.Printf("Error updating gateway status for %s: %v", messageID, res.Error)
	}
}

// MarkEventProcessed records an event id and reports whether it was new.
// Redelivered events come back false and must not be dispatched again.
func MarkEventProcessed(eventID, kind, orderID string) (bool, error) {
	if GormDB == nil {
		// Without a database there is no dedup; treat every event as new.
		return true, nil
	}

	var existing models.ProcessedEvent
	err := GormDB.Where("event_id = ?", eventID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := GormDB.Create(&models.ProcessedEvent{
		EventID: eventID,
		Kind:    kind,
		OrderID: orderID,
	}).Error; err != nil {
		return false, err
	}
	return true, nil
}
