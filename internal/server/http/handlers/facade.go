package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in model.Registration) (*model.User, string, error)
	Authenticate(ctx context.Context, login, password string) (*model.User, string, error)
	ParseToken(token string) (model.Actor, error)
	Me(ctx context.Context, actor model.Actor) (*model.User, error)
}

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	Quote(ctx context.Context, actor model.Actor, gross decimal.Decimal) (model.PriceSplit, error)
	CreateOrder(ctx context.Context, actor model.Actor, in model.NewOrder) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	Orders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error)
	AvailableOrders(ctx context.Context, actor model.Actor) ([]model.Order, error)
	OrderStatistics(ctx context.Context, actor model.Actor) (*model.OrderStatistics, error)
	DeleteOrder(ctx context.Context, actor model.Actor, id int64) error
	ClaimOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error)
	StartTransit(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CompleteOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, *model.Payout, error)
	CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	RateOrder(ctx context.Context, actor model.Actor, id int64, rating int, feedback string) (*model.Order, error)
	DriverProfile(ctx context.Context, actor model.Actor) (*model.DriverProfile, error)
}

// OfferFacade covers marketplace bidding.
type OfferFacade interface {
	SubmitOffer(ctx context.Context, actor model.Actor, orderID int64, in model.NewOffer) (*model.Offer, error)
	Offers(ctx context.Context, actor model.Actor, orderID int64) ([]model.Offer, error)
	MyOffers(ctx context.Context, actor model.Actor) ([]model.Offer, error)
	CompareOffers(ctx context.Context, actor model.Actor, orderID int64) (*model.OfferComparison, error)
	AcceptOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Order, *model.Offer, error)
	RejectOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Offer, error)
}

// ProviderFacade covers provider registration and review.
type ProviderFacade interface {
	RegisterProvider(ctx context.Context, actor model.Actor, in model.NewProvider) (*model.Provider, error)
	MyProvider(ctx context.Context, actor model.Actor) (*model.Provider, error)
	RequestProviderReview(ctx context.Context, actor model.Actor) (*model.Provider, error)
	PendingProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error)
	ActiveProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error)
	NetworkStats(ctx context.Context, actor model.Actor) (*model.NetworkStats, error)
	VerifyProvider(ctx context.Context, actor model.Actor, id int64) (*model.Provider, error)
	RejectProvider(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Provider, error)
}

// LedgerFacade covers payouts, payments and the audit log.
type LedgerFacade interface {
	Payouts(ctx context.Context, actor model.Actor, limit int) ([]model.Payout, error)
	UpdatePayoutStatus(ctx context.Context, actor model.Actor, id int64, to model.PayoutStatus) (*model.Payout, error)
	Checkout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
	AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.AuditEntry, error)
}

// TransportFacade aggregates the full set of operations used across handlers.
type TransportFacade interface {
	AuthFacade
	OrderFacade
	OfferFacade
	ProviderFacade
	LedgerFacade
}

// PushHub upgrades authenticated requests to websocket push connections.
type PushHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error
}
