package models

// StatusWebhookPayload represents the callback posted by the Whapi gateway
// when the delivery state of an outbound message changes.
type StatusWebhookPayload struct {
	Statuses  []MessageStatus `json:"statuses"`
	ChannelID string          `json:"channel_id,omitempty"`
}

// MessageStatus is one delivery-state update for a previously sent message.
type MessageStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"` // sent, delivered, read, failed
	RecipientID string `json:"recipient_id,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}
