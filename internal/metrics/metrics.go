package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NotificationsTotal counts logical notifications by kind
// (status_change, documents) and outcome (success, failure).
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_notify_notifications_total",
		Help: "Logical notifications dispatched, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// GatewayMessagesTotal counts physical gateway sends by message type
// (text, image, document, interactive) and outcome (sent, failed).
var GatewayMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "broker_notify_gateway_messages_total",
		Help: "Physical WhatsApp gateway messages, by type and outcome.",
	},
	[]string{"type", "outcome"},
)
