package usecase

import (
	"context"
	"fmt"
	"slices"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

const (
	defaultPayoutListLimit = 200
	maxPayoutListLimit     = 1000
)

// PayoutUseCase exposes driver remittances.
type PayoutUseCase struct {
	payouts repository.PayoutRepository
	guard   *Guard
}

// NewPayoutUseCase constructs PayoutUseCase.
func NewPayoutUseCase(repos repository.Factory, guard *Guard) *PayoutUseCase {
	return &PayoutUseCase{payouts: repos.Payouts(), guard: guard}
}

// List returns the driver's own payouts, or all payouts for admins.
func (u *PayoutUseCase) List(ctx context.Context, actor model.Actor, limit int) ([]model.Payout, error) {
	if err := u.guard.Authorize(ctx, actor, OpListPayouts, "payout", 0); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleDriver {
		return u.payouts.ListByDriver(ctx, actor.ID)
	}
	return u.payouts.ListAll(ctx, clampLimit(limit, defaultPayoutListLimit, maxPayoutListLimit))
}

// UpdateStatus moves a payout along pending -> processing -> completed | failed.
func (u *PayoutUseCase) UpdateStatus(ctx context.Context, actor model.Actor, id int64, to model.PayoutStatus) (*model.Payout, error) {
	if err := u.guard.Authorize(ctx, actor, OpUpdatePayout, "payout", id); err != nil {
		return nil, err
	}
	current, err := u.payouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(model.PayoutTransitions[current.Status], to) {
		return nil, fmt.Errorf("%w: payout %s -> %s", domainErrors.ErrInvalidTransition, current.Status, to)
	}

	payout, err := u.payouts.UpdateStatus(ctx, id, current.Status, to)
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpUpdatePayout, "payout", id, map[string]any{
		"from": string(current.Status),
		"to":   string(payout.Status),
	})
	return payout, nil
}
