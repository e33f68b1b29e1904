package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// DevGateway stands in for Stripe when no secret key is configured. Sessions
// point straight at the success URL and webhooks use the Stripe event format;
// signatures are checked only when a webhook secret is set.
type DevGateway struct {
	settings Settings
	logger   *slog.Logger
	newID    func() string
}

// NewDevGateway creates the local checkout gateway.
func NewDevGateway(settings Settings, logger *slog.Logger) *DevGateway {
	return &DevGateway{
		settings: settings,
		logger:   logger,
		newID:    func() string { return "cs_dev_" + uuid.NewString() },
	}
}

// CreateCheckout returns a local session without contacting Stripe.
func (g *DevGateway) CreateCheckout(_ context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if _, err := toCents(req.Amount); err != nil {
		return nil, err
	}
	id := g.newID()

	target, err := url.Parse(g.settings.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("parse success url: %w", err)
	}
	q := target.Query()
	q.Set("session_id", id)
	target.RawQuery = q.Encode()

	g.logger.Info("dev checkout session created",
		slog.String("session_id", id),
		slog.Int64("order_id", req.OrderID),
		slog.String("amount", req.Amount.StringFixed(2)))
	return &model.CheckoutSession{ID: id, URL: target.String()}, nil
}

// ParseEvent decodes a Stripe-shaped event.
func (g *DevGateway) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if g.settings.WebhookSecret != "" {
		if err := webhook.ValidatePayload(payload, signature, g.settings.WebhookSecret); err != nil {
			return nil, fmt.Errorf("verify webhook signature: %w", err)
		}
	}
	return parseCheckoutEvent(payload)
}

// Currency reports the settlement currency.
func (g *DevGateway) Currency() string {
	return g.settings.Currency
}
