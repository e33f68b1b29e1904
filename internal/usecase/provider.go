package usecase

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

// ProviderUseCase runs the driver network verification workflow.
type ProviderUseCase struct {
	providers repository.ProviderRepository
	guard     *Guard
	notifier  Notifier
	now       func() time.Time
}

// NewProviderUseCase constructs ProviderUseCase.
func NewProviderUseCase(repos repository.Factory, guard *Guard, notifier Notifier) *ProviderUseCase {
	return &ProviderUseCase{providers: repos.Providers(), guard: guard, notifier: notifier, now: time.Now}
}

// Register creates the calling driver's provider record in unverified state.
func (u *ProviderUseCase) Register(ctx context.Context, actor model.Actor, in model.NewProvider) (*model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpRegisterProvider, "provider", 0); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	provider, err := u.providers.Create(ctx, &model.Provider{
		UserID:               actor.ID,
		CompanyName:          in.CompanyName,
		TaxNumber:            in.TaxNumber,
		BusinessRegistration: in.BusinessRegistration,
		InsuranceCertificate: in.InsuranceCertificate,
		VerificationStatus:   model.VerificationUnverified,
		IsActive:             false,
	})
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpRegisterProvider, "provider", provider.ID, map[string]any{
		"company_name": provider.CompanyName,
	})
	return provider, nil
}

// Mine returns the calling driver's provider record.
func (u *ProviderUseCase) Mine(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpViewOwnProvider, "provider", 0); err != nil {
		return nil, err
	}
	return u.providers.GetByUserID(ctx, actor.ID)
}

// RequestReview submits an unverified or rejected provider for admin review.
func (u *ProviderUseCase) RequestReview(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpRequestReview, "provider", 0); err != nil {
		return nil, err
	}
	current, err := u.providers.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	provider, err := u.providers.Review(ctx, model.ProviderReview{
		ProviderID: current.ID,
		From:       []model.VerificationStatus{model.VerificationUnverified, model.VerificationRejected},
		To:         model.VerificationInReview,
	})
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpRequestReview, "provider", provider.ID, map[string]any{
		"from": string(current.VerificationStatus),
	})
	return provider, nil
}

// Pending lists providers awaiting a decision.
func (u *ProviderUseCase) Pending(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpListPending, "provider", 0); err != nil {
		return nil, err
	}
	return u.providers.ListByStatus(ctx, model.VerificationUnverified, model.VerificationInReview)
}

// Active lists providers allowed to bid.
func (u *ProviderUseCase) Active(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpListActive, "provider", 0); err != nil {
		return nil, err
	}
	return u.providers.ListActive(ctx)
}

// Stats aggregates the provider network.
func (u *ProviderUseCase) Stats(ctx context.Context, actor model.Actor) (*model.NetworkStats, error) {
	if err := u.guard.Authorize(ctx, actor, OpNetworkStats, "provider", 0); err != nil {
		return nil, err
	}
	return u.providers.Stats(ctx)
}

// Verify activates a provider.
func (u *ProviderUseCase) Verify(ctx context.Context, actor model.Actor, providerID int64) (*model.Provider, error) {
	return u.review(ctx, actor, model.ProviderReview{
		ProviderID: providerID,
		From:       []model.VerificationStatus{model.VerificationUnverified, model.VerificationInReview},
		To:         model.VerificationVerified,
		ReviewerID: actor.ID,
	})
}

// Reject deactivates a provider, including a previously verified one.
func (u *ProviderUseCase) Reject(ctx context.Context, actor model.Actor, providerID int64, reason string) (*model.Provider, error) {
	if len(reason) > 1000 {
		return nil, domainErrors.Validation("reason must be at most 1000 characters")
	}
	return u.review(ctx, actor, model.ProviderReview{
		ProviderID: providerID,
		From: []model.VerificationStatus{
			model.VerificationUnverified,
			model.VerificationInReview,
			model.VerificationVerified,
		},
		To:         model.VerificationRejected,
		ReviewerID: actor.ID,
		Reason:     reason,
	})
}

func (u *ProviderUseCase) review(ctx context.Context, actor model.Actor, review model.ProviderReview) (*model.Provider, error) {
	if err := u.guard.Authorize(ctx, actor, OpReviewProvider, "provider", review.ProviderID); err != nil {
		return nil, err
	}

	provider, err := u.providers.Review(ctx, review)
	if err != nil {
		return nil, err
	}

	details := map[string]any{
		"status":    string(provider.VerificationStatus),
		"is_active": provider.IsActive,
	}
	if review.Reason != "" {
		details["reason"] = review.Reason
	}
	u.guard.Record(ctx, actor, OpReviewProvider, "provider", provider.ID, details)
	u.notifier.Notify(ctx, newEvent(model.EventProviderReviewed, u.now(), map[string]any{
		"provider_id":  provider.ID,
		"company_name": provider.CompanyName,
		"status":       string(provider.VerificationStatus),
		"reason":       review.Reason,
	}, provider.UserID))

	return provider, nil
}
