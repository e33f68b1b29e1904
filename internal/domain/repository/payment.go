package repository

import (
	"context"
	"time"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// PaymentRepository stores checkout sessions opened for orders.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	GetBySession(ctx context.Context, sessionID string) (*model.Payment, error)
	// Settle moves a pending payment to to. Settling as completed stamps the
	// order's paid_at in the same transaction. ErrConcurrency when the payment
	// is no longer pending.
	Settle(ctx context.Context, sessionID string, to model.PaymentStatus, at time.Time) (*model.Payment, error)
}
