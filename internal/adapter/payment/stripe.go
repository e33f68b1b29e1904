package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

const (
	eventSessionCompleted      = "checkout.session.completed"
	eventSessionExpired        = "checkout.session.expired"
	eventSessionAsyncFailed    = "checkout.session.async_payment_failed"
	eventSessionAsyncSucceeded = "checkout.session.async_payment_succeeded"

	metadataOrderID  = "order_id"
	metadataClientID = "client_id"
)

// ErrInvalidAmount is returned for checkout amounts that do not convert to positive cents.
var ErrInvalidAmount = errors.New("checkout amount must be positive")

// Settings configure checkout sessions and webhook verification.
type Settings struct {
	Currency      string
	SuccessURL    string
	CancelURL     string
	WebhookSecret string
}

// StripeGateway opens Stripe checkout sessions and verifies Stripe webhooks.
type StripeGateway struct {
	api      *client.API
	settings Settings
	logger   *slog.Logger
}

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string, settings Settings, logger *slog.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key must be provided")
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 10 * time.Second},
		MaxNetworkRetries: stripe.Int64(2),
	})
	return newStripeGateway(secretKey, backend, settings, logger), nil
}

func newStripeGateway(secretKey string, backend stripe.Backend, settings Settings, logger *slog.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeGateway{api: api, settings: settings, logger: logger}
}

// CreateCheckout opens a one-item payment session for the order total.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	cents, err := toCents(req.Amount)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.settings.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(g.settings.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(req.OrderID, 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.settings.Currency),
				UnitAmount: stripe.Int64(cents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, strconv.FormatInt(req.OrderID, 10))
	params.AddMetadata(metadataClientID, strconv.FormatInt(req.ClientID, 10))

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("stripe checkout session failed",
			slog.Int64("order_id", req.OrderID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return &model.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// ParseEvent verifies the Stripe-Signature header and classifies the event.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if err := webhook.ValidatePayload(payload, signature, g.settings.WebhookSecret); err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}
	return parseCheckoutEvent(payload)
}

// Currency reports the settlement currency.
func (g *StripeGateway) Currency() string {
	return g.settings.Currency
}

type checkoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object stripe.CheckoutSession `json:"object"`
	} `json:"data"`
}

func parseCheckoutEvent(payload []byte) (*model.PaymentEvent, error) {
	var evt checkoutEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	session := evt.Data.Object
	result := &model.PaymentEvent{Type: model.PaymentEventIgnored, SessionID: session.ID}
	if raw, ok := session.Metadata[metadataOrderID]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid order id in metadata: %w", err)
		}
		result.OrderID = id
	}

	switch evt.Type {
	case eventSessionCompleted, eventSessionAsyncSucceeded:
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			result.Type = model.PaymentEventConfirmed
		}
	case eventSessionExpired, eventSessionAsyncFailed:
		result.Type = model.PaymentEventFailed
	}
	if result.Type != model.PaymentEventIgnored && result.SessionID == "" {
		return nil, fmt.Errorf("webhook event %s carries no session id", evt.Type)
	}
	return result, nil
}

func toCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2).Round(0)
	if !cents.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}
