package model

import "time"

// EventType names a notification event.
type EventType string

const (
	EventOrderCreated     EventType = "order.created"
	EventOfferSubmitted   EventType = "offer.submitted"
	EventOfferAccepted    EventType = "offer.accepted"
	EventOfferRejected    EventType = "offer.rejected"
	EventOrderStatus      EventType = "order.status_changed"
	EventPayoutCreated    EventType = "payout.created"
	EventProviderReviewed EventType = "provider.reviewed"
	EventPaymentConfirmed EventType = "payment.confirmed"
)

// Event is handed to notification channels after a state change commits.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Recipients []int64        `json:"recipients"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}
