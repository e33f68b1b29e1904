package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus describes remittance progress.
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// PayoutTransitions lists the statuses each payout status may move to.
var PayoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:    {PayoutStatusProcessing, PayoutStatusFailed},
	PayoutStatusProcessing: {PayoutStatusCompleted, PayoutStatusFailed},
}

// Payout is the driver remittance created once per completed order.
type Payout struct {
	ID        int64
	OrderID   int64
	DriverID  int64
	Amount    decimal.Decimal
	Status    PayoutStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
