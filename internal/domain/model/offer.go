package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OfferStatus describes a marketplace bid state.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

// Offer is a driver's bid against an order.
type Offer struct {
	ID                int64
	OrderID           int64
	DriverID          int64
	QuotedPrice       decimal.Decimal
	EstimatedDuration *int
	Message           string
	DriverRating      *decimal.Decimal
	CompletedJobs     int
	Status            OfferStatus
	ExpiresAt         time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveStatus reports the status as observed at now: a pending offer past its
// expiry is expired even if storage has not caught up yet.
func (o *Offer) EffectiveStatus(now time.Time) OfferStatus {
	if o.Status == OfferStatusPending && !now.Before(o.ExpiresAt) {
		return OfferStatusExpired
	}
	return o.Status
}

// NewOffer carries validated driver input for offer submission.
type NewOffer struct {
	QuotedPrice       decimal.Decimal `validate:"-"`
	EstimatedDuration *int            `validate:"omitempty,min=1,max=10080"`
	Message           string          `validate:"max=1000"`
}

// OfferComparison summarises live pending offers of an order.
type OfferComparison struct {
	TotalOffers  int
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	AveragePrice decimal.Decimal
	BestRated    *Offer
}
