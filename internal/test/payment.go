package test

import (
	"context"
	"fmt"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// PaymentGatewayStub simulates the payment provider.
type PaymentGatewayStub struct {
	CreateFn func(context.Context, model.CheckoutRequest) (*model.CheckoutSession, error)
	ParseFn  func([]byte, string) (*model.PaymentEvent, error)

	Requests []model.CheckoutRequest
}

// CreateCheckout records the request and returns a deterministic session.
func (g *PaymentGatewayStub) CreateCheckout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	g.Requests = append(g.Requests, req)
	if g.CreateFn != nil {
		return g.CreateFn(ctx, req)
	}
	id := fmt.Sprintf("cs_test_%d", req.OrderID)
	return &model.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

// ParseEvent delegates to the override or reports an ignored event.
func (g *PaymentGatewayStub) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if g.ParseFn != nil {
		return g.ParseFn(payload, signature)
	}
	return &model.PaymentEvent{Type: model.PaymentEventIgnored}, nil
}

// Currency reports the settlement currency.
func (g *PaymentGatewayStub) Currency() string {
	return "eur"
}
