package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/usecase"
)

// TransportFacade exposes the use cases to the HTTP layer.
type TransportFacade struct {
	auth        *usecase.AuthUseCase
	marketplace *usecase.MarketplaceUseCase
	orders      *usecase.OrderUseCase
	providers   *usecase.ProviderUseCase
	payouts     *usecase.PayoutUseCase
	payments    *usecase.PaymentUseCase
	audit       *usecase.AuditUseCase
}

// FacadeParams lists the use cases aggregated by the facade.
type FacadeParams struct {
	fx.In

	Auth        *usecase.AuthUseCase
	Marketplace *usecase.MarketplaceUseCase
	Orders      *usecase.OrderUseCase
	Providers   *usecase.ProviderUseCase
	Payouts     *usecase.PayoutUseCase
	Payments    *usecase.PaymentUseCase
	Audit       *usecase.AuditUseCase
}

func NewTransportFacade(p FacadeParams) *TransportFacade {
	return &TransportFacade{
		auth:        p.Auth,
		marketplace: p.Marketplace,
		orders:      p.Orders,
		providers:   p.Providers,
		payouts:     p.Payouts,
		payments:    p.Payments,
		audit:       p.Audit,
	}
}

func (f *TransportFacade) Register(ctx context.Context, in model.Registration) (*model.User, string, error) {
	return f.auth.Register(ctx, in)
}

func (f *TransportFacade) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, login, password)
}

func (f *TransportFacade) ParseToken(token string) (model.Actor, error) {
	return f.auth.ParseToken(token)
}

// Me returns the account behind the actor.
func (f *TransportFacade) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	return f.auth.GetByID(ctx, actor.ID)
}

func (f *TransportFacade) Quote(ctx context.Context, actor model.Actor, gross decimal.Decimal) (model.PriceSplit, error) {
	return f.marketplace.Quote(ctx, actor, gross)
}

func (f *TransportFacade) CreateOrder(ctx context.Context, actor model.Actor, in model.NewOrder) (*model.Order, error) {
	return f.marketplace.CreateOrder(ctx, actor, in)
}

func (f *TransportFacade) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *TransportFacade) Orders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	return f.orders.List(ctx, actor, limit)
}

func (f *TransportFacade) AvailableOrders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	return f.marketplace.AvailableOrders(ctx, actor)
}

func (f *TransportFacade) OrderStatistics(ctx context.Context, actor model.Actor) (*model.OrderStatistics, error) {
	return f.orders.Statistics(ctx, actor)
}

func (f *TransportFacade) DeleteOrder(ctx context.Context, actor model.Actor, id int64) error {
	return f.orders.Delete(ctx, actor, id)
}

func (f *TransportFacade) ClaimOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Claim(ctx, actor, id)
}

func (f *TransportFacade) AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error) {
	return f.orders.AssignDriver(ctx, actor, id, driverID)
}

func (f *TransportFacade) StartTransit(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.StartTransit(ctx, actor, id)
}

func (f *TransportFacade) CompleteOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, *model.Payout, error) {
	return f.orders.Complete(ctx, actor, id)
}

func (f *TransportFacade) CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Cancel(ctx, actor, id)
}

func (f *TransportFacade) RateOrder(ctx context.Context, actor model.Actor, id int64, rating int, feedback string) (*model.Order, error) {
	return f.orders.Rate(ctx, actor, id, rating, feedback)
}

func (f *TransportFacade) DriverProfile(ctx context.Context, actor model.Actor) (*model.DriverProfile, error) {
	return f.orders.DriverProfile(ctx, actor)
}

func (f *TransportFacade) SubmitOffer(ctx context.Context, actor model.Actor, orderID int64, in model.NewOffer) (*model.Offer, error) {
	return f.marketplace.SubmitOffer(ctx, actor, orderID, in)
}

func (f *TransportFacade) Offers(ctx context.Context, actor model.Actor, orderID int64) ([]model.Offer, error) {
	return f.marketplace.ListOffers(ctx, actor, orderID)
}

func (f *TransportFacade) MyOffers(ctx context.Context, actor model.Actor) ([]model.Offer, error) {
	return f.marketplace.MyOffers(ctx, actor)
}

func (f *TransportFacade) CompareOffers(ctx context.Context, actor model.Actor, orderID int64) (*model.OfferComparison, error) {
	return f.marketplace.CompareOffers(ctx, actor, orderID)
}

func (f *TransportFacade) AcceptOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Order, *model.Offer, error) {
	return f.marketplace.AcceptOffer(ctx, actor, orderID, offerID)
}

func (f *TransportFacade) RejectOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Offer, error) {
	return f.marketplace.RejectOffer(ctx, actor, orderID, offerID)
}

func (f *TransportFacade) RegisterProvider(ctx context.Context, actor model.Actor, in model.NewProvider) (*model.Provider, error) {
	return f.providers.Register(ctx, actor, in)
}

func (f *TransportFacade) MyProvider(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	return f.providers.Mine(ctx, actor)
}

func (f *TransportFacade) RequestProviderReview(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	return f.providers.RequestReview(ctx, actor)
}

func (f *TransportFacade) PendingProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	return f.providers.Pending(ctx, actor)
}

func (f *TransportFacade) ActiveProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	return f.providers.Active(ctx, actor)
}

func (f *TransportFacade) NetworkStats(ctx context.Context, actor model.Actor) (*model.NetworkStats, error) {
	return f.providers.Stats(ctx, actor)
}

func (f *TransportFacade) VerifyProvider(ctx context.Context, actor model.Actor, id int64) (*model.Provider, error) {
	return f.providers.Verify(ctx, actor, id)
}

func (f *TransportFacade) RejectProvider(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Provider, error) {
	return f.providers.Reject(ctx, actor, id, reason)
}

func (f *TransportFacade) Payouts(ctx context.Context, actor model.Actor, limit int) ([]model.Payout, error) {
	return f.payouts.List(ctx, actor, limit)
}

func (f *TransportFacade) UpdatePayoutStatus(ctx context.Context, actor model.Actor, id int64, to model.PayoutStatus) (*model.Payout, error) {
	return f.payouts.UpdateStatus(ctx, actor, id, to)
}

func (f *TransportFacade) Checkout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
	return f.payments.Checkout(ctx, actor, orderID)
}

func (f *TransportFacade) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.payments.HandleWebhook(ctx, payload, signature)
}

func (f *TransportFacade) AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.AuditEntry, error) {
	return f.audit.List(ctx, actor, limit)
}

// EnsureSuperAdmin bootstraps the configured back-office account.
func (f *TransportFacade) EnsureSuperAdmin(ctx context.Context, login, password string) error {
	return f.auth.EnsureSuperAdmin(ctx, login, password)
}
