package repository

import (
	"context"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// PayoutRepository provides access to driver payouts.
type PayoutRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Payout, error)
	ListByDriver(ctx context.Context, driverID int64) ([]model.Payout, error)
	ListAll(ctx context.Context, limit int) ([]model.Payout, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.PayoutStatus) (*model.Payout, error)
}
