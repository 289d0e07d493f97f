package api

import (
	"net/http"
	"sort"

	"broker-notify/internal/catalog"
	"broker-notify/internal/database"
	"broker-notify/internal/metrics"
	"broker-notify/internal/models"
	"broker-notify/internal/notify"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Dispatcher *notify.Dispatcher
}

func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{Dispatcher: dispatcher}
}

// SendStatusNotification dispatches a status-change notification and records
// the outcome. Delivery failure is reported but treated as non-fatal by
// order-management callers; the order status itself was already persisted.
func (h *NotificationHandler) SendStatusNotification(c *gin.Context) {
	var req notify.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.Dispatcher.SendStatusChangeNotification(req)
	h.record("status_change", req.NewStatus, req.OrderID, req.OrderNumber, string(req.Language), result)

	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendDocumentNotification dispatches a documents-added notification.
func (h *NotificationHandler) SendDocumentNotification(c *gin.Context) {
	var req notify.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.Dispatcher.SendDocumentNotification(req)
	h.record("documents", "", req.OrderID, req.OrderNumber, string(req.Language), result)

	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) record(kind, status, orderID, orderNumber, language string, result notify.SendResult) {
	outcome := "failure"
	gatewayStatus := "failed"
	if result.Success {
		outcome = "success"
		gatewayStatus = "pending"
	}
	metrics.NotificationsTotal.WithLabelValues(kind, outcome).Inc()

	database.RecordNotification(&models.NotificationLog{
		OrderID:          orderID,
		OrderNumber:      orderNumber,
		Kind:             kind,
		Status:           status,
		Language:         language,
		Success:          result.Success,
		MessagesSent:     result.MessagesSent,
		GatewayMessageID: result.MessageID,
		GatewayStatus:    gatewayStatus,
		ErrorMessage:     result.Error,
	})
}

// GetNotifications lists logged notifications, optionally filtered by order.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	if database.GormDB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
		return
	}

	query := database.GormDB.Order("created_at DESC").Limit(200)
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var logs []models.NotificationLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// GetStatuses lists the order statuses the catalog can notify about.
func (h *NotificationHandler) GetStatuses(c *gin.Context) {
	keys := catalog.Statuses()
	sort.Strings(keys)

	statuses := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		cfg, _ := catalog.GetStatusMessageConfig(key)
		statuses = append(statuses, gin.H{
			"status":            cfg.Status,
			"emoji":             cfg.Emoji,
			"include_documents": cfg.IncludeDocuments,
		})
	}

	c.JSON(http.StatusOK, statuses)
}
