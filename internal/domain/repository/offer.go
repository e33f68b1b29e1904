package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// SplitFunc computes the price split for a gross price.
type SplitFunc func(gross decimal.Decimal) (model.PriceSplit, error)

// OfferRepository describes persistence of marketplace offers.
type OfferRepository interface {
	// Create stores a pending offer if the order is still open. A second offer from
	// the same driver on the same order yields ErrOfferExists.
	Create(ctx context.Context, offer *model.Offer) (*model.Offer, error)
	GetByID(ctx context.Context, id int64) (*model.Offer, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Offer, error)
	ListByDriver(ctx context.Context, driverID int64) ([]model.Offer, error)
	// Accept atomically accepts offerID, rejects every other pending offer of the
	// order and confirms the order at the split computed from the quoted price.
	// An offer whose expiry is not after now is rejected with ErrOfferExpired.
	Accept(ctx context.Context, orderID, offerID int64, split SplitFunc, now time.Time) (*model.Order, *model.Offer, error)
	Reject(ctx context.Context, orderID, offerID int64) (*model.Offer, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
