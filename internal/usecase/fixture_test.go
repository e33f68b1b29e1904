package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/pricing"
	"github.com/polkiloo/autotransit/internal/test"
)

type fixture struct {
	store    *test.MemoryStore
	notifier *test.NotifierStub
	gateway  *test.PaymentGatewayStub
	guard    *Guard

	market   *MarketplaceUseCase
	orders   *OrderUseCase
	network  *ProviderUseCase
	payouts  *PayoutUseCase
	payments *PaymentUseCase
	audit    *AuditUseCase

	client model.Actor
	admin  model.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := test.NewMemoryStore()
	notifier := &test.NotifierStub{}
	gateway := &test.PaymentGatewayStub{}
	guard := NewGuard(NewAuditRecorder(store.Audit(), discardLogger()), discardLogger())

	f := &fixture{
		store:    store,
		notifier: notifier,
		gateway:  gateway,
		guard:    guard,
		market:   NewMarketplaceUseCase(store, pricing.DefaultPolicy(), guard, notifier, MarketplaceOptions{}),
		orders:   NewOrderUseCase(store, guard, notifier),
		network:  NewProviderUseCase(store, guard, notifier),
		payouts:  NewPayoutUseCase(store, guard),
		payments: NewPaymentUseCase(store, gateway, guard, notifier),
		audit:    NewAuditUseCase(store, guard),
	}
	f.client = model.Actor{ID: store.SeedUser("client", model.RoleClient), Role: model.RoleClient}
	f.admin = model.Actor{ID: store.SeedUser("admin", model.RoleAdmin), Role: model.RoleAdmin}
	return f
}

// verifiedDriver seeds a driver with an active provider record.
func (f *fixture) verifiedDriver(login string, rating string) model.Actor {
	id := f.store.SeedUser(login, model.RoleDriver)
	var r *decimal.Decimal
	if rating != "" {
		d := decimal.RequireFromString(rating)
		r = &d
	}
	f.store.SeedProvider(id, model.VerificationVerified, r)
	return model.Actor{ID: id, Role: model.RoleDriver}
}

func (f *fixture) createOrder(t *testing.T, price string) *model.Order {
	t.Helper()
	order, err := f.market.CreateOrder(context.Background(), f.client, newOrderInput(price))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func (f *fixture) submit(t *testing.T, driver model.Actor, orderID int64, price string) *model.Offer {
	t.Helper()
	offer, err := f.market.SubmitOffer(context.Background(), driver, orderID, model.NewOffer{
		QuotedPrice: decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("submit offer: %v", err)
	}
	return offer
}

// enrouteOrder returns an order assigned to driver and moved to enroute.
func (f *fixture) enrouteOrder(t *testing.T, driver model.Actor, price string) *model.Order {
	t.Helper()
	ctx := context.Background()
	order := f.createOrder(t, price)
	if _, err := f.orders.Claim(ctx, driver, order.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	started, err := f.orders.StartTransit(ctx, driver, order.ID)
	if err != nil {
		t.Fatalf("start transit: %v", err)
	}
	return started
}

func newOrderInput(price string) model.NewOrder {
	return model.NewOrder{
		VehicleType:      "sedan",
		VehicleMake:      "VW",
		VehicleModel:     "Passat",
		PickupLocation:   "Berlin",
		DeliveryLocation: "Munich",
		PickupDate:       time.Now().Add(48 * time.Hour),
		Price:            decimal.RequireFromString(price),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
