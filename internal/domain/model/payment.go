package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus describes a client payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records a checkout session opened for an order.
type Payment struct {
	ID        int64
	OrderID   int64
	ClientID  int64
	SessionID string
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckoutRequest is passed to the payment gateway.
type CheckoutRequest struct {
	OrderID     int64
	ClientID    int64
	Amount      decimal.Decimal
	Description string
}

// CheckoutSession is the gateway's answer to a checkout request.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEventType classifies verified gateway callbacks.
type PaymentEventType string

const (
	PaymentEventConfirmed PaymentEventType = "confirmed"
	PaymentEventFailed    PaymentEventType = "failed"
	PaymentEventIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is a verified gateway callback.
type PaymentEvent struct {
	Type      PaymentEventType
	SessionID string
	OrderID   int64
}
