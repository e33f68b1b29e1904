package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

const (
	defaultOrderListLimit = 200
	maxOrderListLimit     = 1000
)

// OrderUseCase drives the order lifecycle state machine.
type OrderUseCase struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	providers repository.ProviderRepository
	profiles  repository.DriverProfileRepository
	guard     *Guard
	notifier  Notifier
	now       func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(repos repository.Factory, guard *Guard, notifier Notifier) *OrderUseCase {
	return &OrderUseCase{
		orders:    repos.Orders(),
		users:     repos.Users(),
		providers: repos.Providers(),
		profiles:  repos.DriverProfiles(),
		guard:     guard,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Get returns an order visible to the actor: admins see all, clients their own,
// drivers orders assigned to them and orders still open for bidding.
func (u *OrderUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpViewOrder, "order", id); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.Role.IsAdmin():
	case actor.Role == model.RoleClient && order.ClientID == actor.ID:
	case actor.Role == model.RoleDriver && (order.AssignedTo(actor.ID) || order.Status == model.OrderStatusCreated):
	default:
		return nil, u.guard.Deny(ctx, actor, OpViewOrder, "order", id, notRelated("order is not related to the caller"))
	}
	return order, nil
}

// List returns the caller's orders: clients their own, drivers their assignments,
// admins the whole book.
func (u *OrderUseCase) List(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpListOrders, "order", 0); err != nil {
		return nil, err
	}
	switch actor.Role {
	case model.RoleClient:
		return u.orders.ListByClient(ctx, actor.ID)
	case model.RoleDriver:
		return u.orders.ListByDriver(ctx, actor.ID)
	default:
		return u.orders.ListAll(ctx, clampLimit(limit, defaultOrderListLimit, maxOrderListLimit))
	}
}

// Claim lets an eligible driver take an unassigned open order. Exactly one of
// several concurrent claimants wins; the others get a concurrency error.
func (u *OrderUseCase) Claim(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpClaimOrder, "order", id); err != nil {
		return nil, err
	}
	provider, err := u.providers.GetByUserID(ctx, actor.ID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	if provider == nil || !provider.IsActive {
		return nil, u.guard.Deny(ctx, actor, OpClaimOrder, "order", id, domainErrors.ErrNotEligible)
	}

	order, err := u.orders.AssignDriver(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	u.statusChanged(ctx, actor, OpClaimOrder, order, model.OrderStatusCreated)
	return order, nil
}

// AssignDriver lets an admin put a driver on an unassigned open order.
func (u *OrderUseCase) AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpAssignDriver, "order", id); err != nil {
		return nil, err
	}
	driver, err := u.users.GetByID(ctx, driverID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.Validation("driver does not exist")
	}
	if err != nil {
		return nil, err
	}
	if driver.Role != model.RoleDriver {
		return nil, domainErrors.Validation("assignee is not a driver")
	}

	order, err := u.orders.AssignDriver(ctx, id, driverID)
	if err != nil {
		return nil, err
	}

	u.statusChanged(ctx, actor, OpAssignDriver, order, model.OrderStatusCreated)
	return order, nil
}

// StartTransit moves a confirmed order of the assigned driver to enroute.
func (u *OrderUseCase) StartTransit(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if _, err := u.assignedOrder(ctx, actor, OpStartTransit, id, model.OrderStatusConfirmed); err != nil {
		return nil, err
	}

	order, err := u.orders.Transition(ctx, id, []model.OrderStatus{model.OrderStatusConfirmed}, model.OrderStatusEnroute)
	if err != nil {
		return nil, err
	}

	u.statusChanged(ctx, actor, OpStartTransit, order, model.OrderStatusConfirmed)
	return order, nil
}

// Complete finishes an enroute order. The driver statistics and the single payout
// are written in the same transaction as the status change.
func (u *OrderUseCase) Complete(ctx context.Context, actor model.Actor, id int64) (*model.Order, *model.Payout, error) {
	if _, err := u.assignedOrder(ctx, actor, OpCompleteOrder, id, model.OrderStatusEnroute); err != nil {
		return nil, nil, err
	}

	order, payout, err := u.orders.Complete(ctx, id, actor.ID)
	if err != nil {
		return nil, nil, err
	}

	u.statusChanged(ctx, actor, OpCompleteOrder, order, model.OrderStatusEnroute)
	u.guard.Record(ctx, actor, OpCompleteOrder, "payout", payout.ID, map[string]any{
		"order_id": order.ID,
		"amount":   payout.Amount.StringFixed(2),
	})
	u.notifier.Notify(ctx, newEvent(model.EventPayoutCreated, u.now(), map[string]any{
		"order_id":  order.ID,
		"payout_id": payout.ID,
		"amount":    payout.Amount.StringFixed(2),
	}, payout.DriverID))

	return order, payout, nil
}

// Cancel cancels a created or confirmed order for its client or an admin.
func (u *OrderUseCase) Cancel(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpCancelOrder, "order", id); err != nil {
		return nil, err
	}
	current, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() && current.ClientID != actor.ID {
		return nil, u.guard.Deny(ctx, actor, OpCancelOrder, "order", id, notRelated("order belongs to another client"))
	}
	if current.Status != model.OrderStatusCreated && current.Status != model.OrderStatusConfirmed {
		return nil, transitionError(current.Status, model.OrderStatusCancelled)
	}

	order, err := u.orders.Transition(ctx, id,
		[]model.OrderStatus{model.OrderStatusCreated, model.OrderStatusConfirmed}, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	u.statusChanged(ctx, actor, OpCancelOrder, order, current.Status)
	return order, nil
}

// Rate stores the client's one-time rating of a completed order.
func (u *OrderUseCase) Rate(ctx context.Context, actor model.Actor, id int64, rating int, feedback string) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpRateOrder, "order", id); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, domainErrors.ErrInvalidRating
	}
	if len(feedback) > 2000 {
		return nil, domainErrors.Validation("feedback must be at most 2000 characters")
	}

	current, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ClientID != actor.ID {
		return nil, u.guard.Deny(ctx, actor, OpRateOrder, "order", id, notRelated("order belongs to another client"))
	}
	if current.Status != model.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: only completed orders can be rated", domainErrors.ErrConflict)
	}

	order, err := u.orders.Rate(ctx, id, actor.ID, rating, feedback)
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpRateOrder, "order", id, map[string]any{"rating": rating})
	return order, nil
}

// Delete removes an order. Reserved to super admins.
func (u *OrderUseCase) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if err := u.guard.Authorize(ctx, actor, OpDeleteOrder, "order", id); err != nil {
		return err
	}
	if err := u.orders.Delete(ctx, id); err != nil {
		return err
	}
	u.guard.Record(ctx, actor, OpDeleteOrder, "order", id, nil)
	return nil
}

// Statistics aggregates the order book.
func (u *OrderUseCase) Statistics(ctx context.Context, actor model.Actor) (*model.OrderStatistics, error) {
	if err := u.guard.Authorize(ctx, actor, OpOrderStatistics, "order", 0); err != nil {
		return nil, err
	}
	return u.orders.Statistics(ctx)
}

// DriverProfile returns the earnings statistics of the calling driver.
func (u *OrderUseCase) DriverProfile(ctx context.Context, actor model.Actor) (*model.DriverProfile, error) {
	if err := u.guard.Authorize(ctx, actor, OpViewDriverProfile, "driver_profile", actor.ID); err != nil {
		return nil, err
	}
	profile, err := u.profiles.GetByUserID(ctx, actor.ID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return &model.DriverProfile{UserID: actor.ID}, nil
	}
	return profile, err
}

// assignedOrder authorizes op for the assigned driver and checks the expected status.
func (u *OrderUseCase) assignedOrder(ctx context.Context, actor model.Actor, op Operation, id int64, want model.OrderStatus) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, op, "order", id); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.AssignedTo(actor.ID) {
		return nil, u.guard.Deny(ctx, actor, op, "order", id, notRelated("order is assigned to another driver"))
	}
	if order.Status != want {
		return nil, transitionError(order.Status, nextStatus(want))
	}
	return order, nil
}

func (u *OrderUseCase) statusChanged(ctx context.Context, actor model.Actor, op Operation, order *model.Order, from model.OrderStatus) {
	details := map[string]any{
		"from": string(from),
		"to":   string(order.Status),
	}
	if order.DriverID != nil {
		details["driver_id"] = *order.DriverID
	}
	u.guard.Record(ctx, actor, op, "order", order.ID, details)
	u.notifier.Notify(ctx, newEvent(model.EventOrderStatus, u.now(), map[string]any{
		"order_id": order.ID,
		"from":     string(from),
		"status":   string(order.Status),
	}, orderRecipients(order)...))
}

func nextStatus(from model.OrderStatus) model.OrderStatus {
	switch from {
	case model.OrderStatusCreated:
		return model.OrderStatusConfirmed
	case model.OrderStatusConfirmed:
		return model.OrderStatusEnroute
	case model.OrderStatusEnroute:
		return model.OrderStatusCompleted
	}
	return from
}

func transitionError(from, to model.OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, from, to)
}
