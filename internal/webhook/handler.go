package webhook

import (
	"log"
	"net/http"

	"broker-notify/internal/database"
	"broker-notify/pkg/models"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// HandleStatus processes delivery-state callbacks from the gateway and
// reflects them onto the logged notifications.
func (h *Handler) HandleStatus(c *gin.Context) {
	var payload models.StatusWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding webhook JSON: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	processed := 0
	for _, status := range payload.Statuses {
		if status.ID == "" {
			continue
		}
		database.UpdateGatewayStatus(status.ID, status.Status)
		log.Printf("Gateway status for message %s: %s", status.ID, status.Status)
		processed++
	}

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}
