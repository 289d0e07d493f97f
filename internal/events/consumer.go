package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"broker-notify/internal/config"
	"broker-notify/internal/database"
	"broker-notify/internal/metrics"
	"broker-notify/internal/models"
	"broker-notify/internal/notify"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const (
	queueName          = "broker-notify.notifications"
	keyStatusChanged   = "order.status_changed"
	keyDocumentsAdded  = "order.documents_added"
	dialRetryAttempts  = 5
	dialRetryBaseDelay = 2 * time.Second
)

// OrderEvent is the envelope order services publish when something happened
// that the customer should hear about.
type OrderEvent struct {
	EventID        string                      `json:"event_id"`
	Type           string                      `json:"type"`
	OccurredAt     time.Time                   `json:"occurred_at"`
	StatusChange   *notify.StatusChangeRequest `json:"status_change,omitempty"`
	DocumentsAdded *notify.DocumentRequest     `json:"documents_added,omitempty"`
}

// Consumer bridges AMQP order events to the notification dispatcher.
type Consumer struct {
	Dispatcher *notify.Dispatcher
	URL        string
	Exchange   string
}

func NewConsumer(dispatcher *notify.Dispatcher, cfg *config.Config) *Consumer {
	return &Consumer{
		Dispatcher: dispatcher,
		URL:        cfg.AMQPURL,
		Exchange:   cfg.AMQPExchange,
	}
}

// dialWithRetry connects to RabbitMQ with exponential backoff, giving the
// broker time to come up when both start together.
func dialWithRetry(ctx context.Context, url string) (*amqp091.Connection, error) {
	var lastErr error
	delay := dialRetryBaseDelay

	for i := 1; i <= dialRetryAttempts; i++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			if i > 1 {
				log.Printf("Connected to RabbitMQ on attempt %d", i)
			}
			return conn, nil
		}
		lastErr = err
		log.Printf("RabbitMQ dial failed (attempt %d/%d), retrying in %s: %v", i, dialRetryAttempts, delay, err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", dialRetryAttempts, lastErr)
}

// Start connects, declares the topology and consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := dialWithRetry(ctx, c.URL)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	queue, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{keyStatusChanged, keyDocumentsAdded} {
		if err := ch.QueueBind(queue.Name, key, c.Exchange, false, nil); err != nil {
			conn.Close()
			return fmt.Errorf("bind queue: %w", err)
		}
	}

	consumerTag := "broker-notify-" + uuid.NewString()[:8]
	deliveries, err := ch.Consume(queue.Name, consumerTag, false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("consume: %w", err)
	}

	log.Printf("Consuming order events from exchange %q", c.Exchange)

	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				log.Println("Event consumer shutting down")
				return
			case delivery, ok := <-deliveries:
				if !ok {
					log.Println("Event delivery channel closed")
					return
				}
				if err := c.HandleDelivery(delivery.Body); err != nil {
					log.Printf("Error handling order event: %v", err)
					// Bad payloads are not requeued; there is no retry design.
					delivery.Nack(false, false)
					continue
				}
				delivery.Ack(false)
			}
		}
	}()

	return nil
}

// HandleDelivery decodes one event, deduplicates it and dispatches the
// matching notification.
func (c *Consumer) HandleDelivery(body []byte) error {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if event.EventID == "" {
		return fmt.Errorf("event without event_id")
	}

	var orderID string
	switch {
	case event.StatusChange != nil:
		orderID = event.StatusChange.OrderID
	case event.DocumentsAdded != nil:
		orderID = event.DocumentsAdded.OrderID
	}

	fresh, err := database.MarkEventProcessed(event.EventID, event.Type, orderID)
	if err != nil {
		return fmt.Errorf("dedup event %s: %w", event.EventID, err)
	}
	if !fresh {
		log.Printf("Skipping already processed event %s", event.EventID)
		return nil
	}

	switch event.Type {
	case keyStatusChanged:
		if event.StatusChange == nil {
			return fmt.Errorf("event %s missing status_change payload", event.EventID)
		}
		result := c.Dispatcher.SendStatusChangeNotification(*event.StatusChange)
		c.record("status_change", event.StatusChange.NewStatus, *event.StatusChange, result)

	case keyDocumentsAdded:
		if event.DocumentsAdded == nil {
			return fmt.Errorf("event %s missing documents_added payload", event.EventID)
		}
		req := event.DocumentsAdded
		result := c.Dispatcher.SendDocumentNotification(*req)
		c.record("documents", "", notify.StatusChangeRequest{
			OrderID:     req.OrderID,
			OrderNumber: req.OrderNumber,
			Language:    req.Language,
		}, result)

	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	return nil
}

func (c *Consumer) record(kind, status string, req notify.StatusChangeRequest, result notify.SendResult) {
	outcome := "failure"
	gatewayStatus := "failed"
	if result.Success {
		outcome = "success"
		gatewayStatus = "pending"
	}
	metrics.NotificationsTotal.WithLabelValues(kind, outcome).Inc()

	database.RecordNotification(&models.NotificationLog{
		OrderID:          req.OrderID,
		OrderNumber:      req.OrderNumber,
		Kind:             kind,
		Status:           status,
		Language:         string(req.Language),
		Success:          result.Success,
		MessagesSent:     result.MessagesSent,
		GatewayMessageID: result.MessageID,
		GatewayStatus:    gatewayStatus,
		ErrorMessage:     result.Error,
	})
}
