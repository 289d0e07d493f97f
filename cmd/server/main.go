package main

import (
	"context"
	"log"

	"broker-notify/internal/api"
	"broker-notify/internal/config"
	"broker-notify/internal/database"
	"broker-notify/internal/events"
	"broker-notify/internal/notify"
	"broker-notify/internal/webhook"
	"broker-notify/internal/whapi"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	whapiClient := whapi.NewClient(cfg)
	dispatcher := notify.NewDispatcher(whapiClient, cfg)
	notificationHandler := api.NewNotificationHandler(dispatcher)
	webhookHandler := webhook.NewHandler()

	// Gateway delivery callbacks
	r.POST("/webhook", webhookHandler.HandleStatus)

	// Notification API Routes
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/notifications/status", notificationHandler.SendStatusNotification)
		apiGroup.POST("/notifications/documents", notificationHandler.SendDocumentNotification)
		apiGroup.GET("/notifications", notificationHandler.GetNotifications)
		apiGroup.GET("/statuses", notificationHandler.GetStatuses)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Optional AMQP ingestion for order services that publish events
	// instead of calling the HTTP API.
	if cfg.AMQPURL != "" {
		consumer := events.NewConsumer(dispatcher, cfg)
		if err := consumer.Start(context.Background()); err != nil {
			log.Printf("Warning: event consumer not started: %v", err)
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
