package repository

import (
	"context"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// ProviderRepository describes persistence of the driver network.
type ProviderRepository interface {
	Create(ctx context.Context, provider *model.Provider) (*model.Provider, error)
	GetByID(ctx context.Context, id int64) (*model.Provider, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Provider, error)
	ListByStatus(ctx context.Context, statuses ...model.VerificationStatus) ([]model.Provider, error)
	ListActive(ctx context.Context) ([]model.Provider, error)
	// Review applies a verification decision guarded by the current status and keeps
	// is_active equal to (status == verified).
	Review(ctx context.Context, review model.ProviderReview) (*model.Provider, error)
	Stats(ctx context.Context) (*model.NetworkStats, error)
}

// DriverProfileRepository exposes driver earnings statistics.
type DriverProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.DriverProfile, error)
}
