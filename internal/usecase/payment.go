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

// PaymentGateway opens checkout sessions and verifies gateway callbacks.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error)
	ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error)
	Currency() string
}

// PaymentUseCase connects confirmed orders with the payment gateway.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	gateway  PaymentGateway
	guard    *Guard
	notifier Notifier
	now      func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(repos repository.Factory, gateway PaymentGateway, guard *Guard, notifier Notifier) *PaymentUseCase {
	return &PaymentUseCase{
		orders:   repos.Orders(),
		payments: repos.Payments(),
		gateway:  gateway,
		guard:    guard,
		notifier: notifier,
		now:      time.Now,
	}
}

// Checkout opens a checkout session for the total price of a confirmed order.
func (u *PaymentUseCase) Checkout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
	if err := u.guard.Authorize(ctx, actor, OpCheckout, "order", orderID); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != actor.ID {
		return nil, u.guard.Deny(ctx, actor, OpCheckout, "order", orderID, notRelated("order belongs to another client"))
	}
	if order.Status != model.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed orders can be paid", domainErrors.ErrConflict)
	}
	if order.PaidAt != nil {
		return nil, fmt.Errorf("%w: order already paid", domainErrors.ErrConflict)
	}

	session, err := u.gateway.CreateCheckout(ctx, model.CheckoutRequest{
		OrderID:     order.ID,
		ClientID:    order.ClientID,
		Amount:      order.Price.Total,
		Description: fmt.Sprintf("Vehicle transport %s: %s -> %s", order.VehicleType, order.PickupLocation, order.DeliveryLocation),
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	payment, err := u.payments.Create(ctx, &model.Payment{
		OrderID:   order.ID,
		ClientID:  order.ClientID,
		SessionID: session.ID,
		Amount:    order.Price.Total,
		Currency:  u.gateway.Currency(),
		Status:    model.PaymentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpCheckout, "payment", payment.ID, map[string]any{
		"order_id":   order.ID,
		"session_id": session.ID,
		"amount":     payment.Amount.StringFixed(2),
	})
	return session, nil
}

// HandleWebhook applies a verified gateway callback. Redelivered callbacks are
// accepted without effect.
func (u *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := u.gateway.ParseEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrValidation, err)
	}

	switch event.Type {
	case model.PaymentEventConfirmed:
		return u.settle(ctx, event.SessionID, model.PaymentStatusCompleted)
	case model.PaymentEventFailed:
		return u.settle(ctx, event.SessionID, model.PaymentStatusFailed)
	default:
		return nil
	}
}

// settle applies a final payment status. The payment and, on confirmation,
// the order's paid_at change in one storage transaction, so a failed attempt
// leaves the payment pending and a redelivery settles it.
func (u *PaymentUseCase) settle(ctx context.Context, sessionID string, to model.PaymentStatus) error {
	current, err := u.payments.GetBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if current.Status != model.PaymentStatusPending {
		return nil
	}

	payment, err := u.payments.Settle(ctx, sessionID, to, u.now())
	if errors.Is(err, domainErrors.ErrConcurrency) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("settle payment %s: %w", sessionID, err)
	}

	system := model.Actor{}
	u.guard.Record(ctx, system, Operation("payment."+string(to)), "payment", payment.ID, map[string]any{
		"order_id":   payment.OrderID,
		"session_id": sessionID,
	})

	if to != model.PaymentStatusCompleted {
		return nil
	}
	u.notifier.Notify(ctx, newEvent(model.EventPaymentConfirmed, u.now(), map[string]any{
		"order_id": payment.OrderID,
		"amount":   payment.Amount.StringFixed(2),
		"currency": payment.Currency,
	}, payment.ClientID))
	return nil
}
