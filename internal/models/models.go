package models

import (
	"time"
)

// NotificationLog records one logical notification and its outcome.
// Persistence happens in the calling layer (API handler or event consumer),
// after the dispatcher returns; delivery failure never blocks the caller.
type NotificationLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          string    `gorm:"type:varchar(255);index" json:"order_id"`
	OrderNumber      string    `gorm:"type:varchar(100)" json:"order_number"`
	Recipient        string    `gorm:"type:varchar(100)" json:"recipient"`
	Kind             string    `gorm:"type:varchar(50)" json:"kind"`   // status_change, documents
	Status           string    `gorm:"type:varchar(50)" json:"status"` // order status that triggered the notification
	Language         string    `gorm:"type:varchar(5)" json:"language"`
	Success          bool      `json:"success"`
	MessagesSent     int       `json:"messages_sent"`
	GatewayMessageID string    `gorm:"type:varchar(255);index" json:"gateway_message_id"`
	GatewayStatus    string    `gorm:"type:varchar(20)" json:"gateway_status"` // pending, sent, delivered, read, failed
	ErrorMessage     string    `gorm:"type:text" json:"error_message"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// ProcessedEvent marks an AMQP event as handled so redeliveries are ignored.
type ProcessedEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(64)" json:"event_id"`
	Kind        string    `gorm:"type:varchar(50)" json:"kind"`
	OrderID     string    `gorm:"type:varchar(255)" json:"order_id"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

func (ProcessedEvent) TableName() string {
	return "processed_events"
}
