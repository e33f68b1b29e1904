package test

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// SampleSplit is the split of a EUR 1200 order under the default policy.
func SampleSplit() model.PriceSplit {
	return model.PriceSplit{
		Total:      decimal.NewFromInt(1200),
		Insurance:  decimal.NewFromInt(180),
		Commission: decimal.NewFromInt(100),
		Payout:     decimal.NewFromInt(920),
	}
}

// SampleOrder returns a fresh open order owned by client 1.
func SampleOrder() *model.Order {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:               1,
		ClientID:         1,
		VehicleType:      "sedan",
		PickupLocation:   "Berlin",
		DeliveryLocation: "Munich",
		PickupDate:       created.Add(48 * time.Hour),
		Price:            SampleSplit(),
		Status:           model.OrderStatusCreated,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

// SampleOffer returns a pending bid by driver 2 on order 1.
func SampleOffer() *model.Offer {
	created := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	return &model.Offer{
		ID:          1,
		OrderID:     1,
		DriverID:    2,
		QuotedPrice: decimal.NewFromInt(1200),
		Status:      model.OfferStatusPending,
		ExpiresAt:   created.Add(72 * time.Hour),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// TransportFacadeStub implements every facade used by HTTP handlers. Each
// method delegates to its Fn field when set and returns sample data otherwise.
type TransportFacadeStub struct {

	RegisterFn              func(context.Context, model.Registration) (*model.User, string, error)
	AuthenticateFn          func(context.Context, string, string) (*model.User, string, error)
	ParseTokenFn            func(string) (model.Actor, error)
	MeFn                    func(context.Context, model.Actor) (*model.User, error)
	QuoteFn                 func(context.Context, model.Actor, decimal.Decimal) (model.PriceSplit, error)
	CreateOrderFn           func(context.Context, model.Actor, model.NewOrder) (*model.Order, error)
	OrderFn                 func(context.Context, model.Actor, int64) (*model.Order, error)
	OrdersFn                func(context.Context, model.Actor, int) ([]model.Order, error)
	AvailableOrdersFn       func(context.Context, model.Actor) ([]model.Order, error)
	OrderStatisticsFn       func(context.Context, model.Actor) (*model.OrderStatistics, error)
	DeleteOrderFn           func(context.Context, model.Actor, int64) error
	ClaimOrderFn            func(context.Context, model.Actor, int64) (*model.Order, error)
	AssignDriverFn          func(context.Context, model.Actor, int64, int64) (*model.Order, error)
	StartTransitFn          func(context.Context, model.Actor, int64) (*model.Order, error)
	CompleteOrderFn         func(context.Context, model.Actor, int64) (*model.Order, *model.Payout, error)
	CancelOrderFn           func(context.Context, model.Actor, int64) (*model.Order, error)
	RateOrderFn             func(context.Context, model.Actor, int64, int, string) (*model.Order, error)
	DriverProfileFn         func(context.Context, model.Actor) (*model.DriverProfile, error)
	SubmitOfferFn           func(context.Context, model.Actor, int64, model.NewOffer) (*model.Offer, error)
	OffersFn                func(context.Context, model.Actor, int64) ([]model.Offer, error)
	MyOffersFn              func(context.Context, model.Actor) ([]model.Offer, error)
	CompareOffersFn         func(context.Context, model.Actor, int64) (*model.OfferComparison, error)
	AcceptOfferFn           func(context.Context, model.Actor, int64, int64) (*model.Order, *model.Offer, error)
	RejectOfferFn           func(context.Context, model.Actor, int64, int64) (*model.Offer, error)
	RegisterProviderFn      func(context.Context, model.Actor, model.NewProvider) (*model.Provider, error)
	MyProviderFn            func(context.Context, model.Actor) (*model.Provider, error)
	RequestProviderReviewFn func(context.Context, model.Actor) (*model.Provider, error)
	PendingProvidersFn      func(context.Context, model.Actor) ([]model.Provider, error)
	ActiveProvidersFn       func(context.Context, model.Actor) ([]model.Provider, error)
	NetworkStatsFn          func(context.Context, model.Actor) (*model.NetworkStats, error)
	VerifyProviderFn        func(context.Context, model.Actor, int64) (*model.Provider, error)
	RejectProviderFn        func(context.Context, model.Actor, int64, string) (*model.Provider, error)
	PayoutsFn               func(context.Context, model.Actor, int) ([]model.Payout, error)
	UpdatePayoutStatusFn    func(context.Context, model.Actor, int64, model.PayoutStatus) (*model.Payout, error)
	CheckoutFn              func(context.Context, model.Actor, int64) (*model.CheckoutSession, error)
	HandlePaymentWebhookFn  func(context.Context, []byte, string) error
	AuditLogFn              func(context.Context, model.Actor, int) ([]model.AuditEntry, error)
}

func (s TransportFacadeStub) Register(ctx context.Context, in model.Registration) (*model.User, string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return &model.User{ID: 1, Login: "user", Role: model.RoleClient}, "token", nil
}

func (s TransportFacadeStub) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return &model.User{ID: 1, Login: "user", Role: model.RoleClient}, "token", nil
}

func (s TransportFacadeStub) ParseToken(token string) (model.Actor, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return model.Actor{ID: 1, Role: model.RoleClient}, nil
}

func (s TransportFacadeStub) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	if s.MeFn != nil {
		return s.MeFn(ctx, actor)
	}
	return &model.User{ID: actor.ID, Login: "user", Role: model.RoleClient}, nil
}

func (s TransportFacadeStub) Quote(ctx context.Context, actor model.Actor, gross decimal.Decimal) (model.PriceSplit, error) {
	if s.QuoteFn != nil {
		return s.QuoteFn(ctx, actor, gross)
	}
	return SampleSplit(), nil
}

func (s TransportFacadeStub) CreateOrder(ctx context.Context, actor model.Actor, in model.NewOrder) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, actor, in)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, id)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) Orders(ctx context.Context, actor model.Actor, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, actor, limit)
	}
	return []model.Order{*SampleOrder()}, nil
}

func (s TransportFacadeStub) AvailableOrders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if s.AvailableOrdersFn != nil {
		return s.AvailableOrdersFn(ctx, actor)
	}
	return []model.Order{*SampleOrder()}, nil
}

func (s TransportFacadeStub) OrderStatistics(ctx context.Context, actor model.Actor) (*model.OrderStatistics, error) {
	if s.OrderStatisticsFn != nil {
		return s.OrderStatisticsFn(ctx, actor)
	}
	return &model.OrderStatistics{ByStatus: map[model.OrderStatus]int64{}}, nil
}

func (s TransportFacadeStub) DeleteOrder(ctx context.Context, actor model.Actor, id int64) error {
	if s.DeleteOrderFn != nil {
		return s.DeleteOrderFn(ctx, actor, id)
	}
	return nil
}

func (s TransportFacadeStub) ClaimOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.ClaimOrderFn != nil {
		return s.ClaimOrderFn(ctx, actor, id)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) AssignDriver(ctx context.Context, actor model.Actor, id, driverID int64) (*model.Order, error) {
	if s.AssignDriverFn != nil {
		return s.AssignDriverFn(ctx, actor, id, driverID)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) StartTransit(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.StartTransitFn != nil {
		return s.StartTransitFn(ctx, actor, id)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) CompleteOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, *model.Payout, error) {
	if s.CompleteOrderFn != nil {
		return s.CompleteOrderFn(ctx, actor, id)
	}
	return SampleOrder(), &model.Payout{ID: 1, OrderID: 1, DriverID: 2, Amount: SampleSplit().Payout, Status: model.PayoutStatusPending}, nil
}

func (s TransportFacadeStub) CancelOrder(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if s.CancelOrderFn != nil {
		return s.CancelOrderFn(ctx, actor, id)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) RateOrder(ctx context.Context, actor model.Actor, id int64, rating int, feedback string) (*model.Order, error) {
	if s.RateOrderFn != nil {
		return s.RateOrderFn(ctx, actor, id, rating, feedback)
	}
	return SampleOrder(), nil
}

func (s TransportFacadeStub) DriverProfile(ctx context.Context, actor model.Actor) (*model.DriverProfile, error) {
	if s.DriverProfileFn != nil {
		return s.DriverProfileFn(ctx, actor)
	}
	return &model.DriverProfile{UserID: 2}, nil
}

func (s TransportFacadeStub) SubmitOffer(ctx context.Context, actor model.Actor, orderID int64, in model.NewOffer) (*model.Offer, error) {
	if s.SubmitOfferFn != nil {
		return s.SubmitOfferFn(ctx, actor, orderID, in)
	}
	return SampleOffer(), nil
}

func (s TransportFacadeStub) Offers(ctx context.Context, actor model.Actor, orderID int64) ([]model.Offer, error) {
	if s.OffersFn != nil {
		return s.OffersFn(ctx, actor, orderID)
	}
	return []model.Offer{*SampleOffer()}, nil
}

func (s TransportFacadeStub) MyOffers(ctx context.Context, actor model.Actor) ([]model.Offer, error) {
	if s.MyOffersFn != nil {
		return s.MyOffersFn(ctx, actor)
	}
	return []model.Offer{*SampleOffer()}, nil
}

func (s TransportFacadeStub) CompareOffers(ctx context.Context, actor model.Actor, orderID int64) (*model.OfferComparison, error) {
	if s.CompareOffersFn != nil {
		return s.CompareOffersFn(ctx, actor, orderID)
	}
	return &model.OfferComparison{}, nil
}

func (s TransportFacadeStub) AcceptOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Order, *model.Offer, error) {
	if s.AcceptOfferFn != nil {
		return s.AcceptOfferFn(ctx, actor, orderID, offerID)
	}
	return SampleOrder(), SampleOffer(), nil
}

func (s TransportFacadeStub) RejectOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Offer, error) {
	if s.RejectOfferFn != nil {
		return s.RejectOfferFn(ctx, actor, orderID, offerID)
	}
	return SampleOffer(), nil
}

func (s TransportFacadeStub) RegisterProvider(ctx context.Context, actor model.Actor, in model.NewProvider) (*model.Provider, error) {
	if s.RegisterProviderFn != nil {
		return s.RegisterProviderFn(ctx, actor, in)
	}
	return &model.Provider{ID: 1, UserID: 2, CompanyName: "Fast Haul", VerificationStatus: model.VerificationUnverified}, nil
}

func (s TransportFacadeStub) MyProvider(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	if s.MyProviderFn != nil {
		return s.MyProviderFn(ctx, actor)
	}
	return &model.Provider{ID: 1, UserID: 2, CompanyName: "Fast Haul", VerificationStatus: model.VerificationUnverified}, nil
}

func (s TransportFacadeStub) RequestProviderReview(ctx context.Context, actor model.Actor) (*model.Provider, error) {
	if s.RequestProviderReviewFn != nil {
		return s.RequestProviderReviewFn(ctx, actor)
	}
	return &model.Provider{ID: 1, UserID: 2, CompanyName: "Fast Haul", VerificationStatus: model.VerificationUnverified}, nil
}

func (s TransportFacadeStub) PendingProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	if s.PendingProvidersFn != nil {
		return s.PendingProvidersFn(ctx, actor)
	}
	return nil, nil
}

func (s TransportFacadeStub) ActiveProviders(ctx context.Context, actor model.Actor) ([]model.Provider, error) {
	if s.ActiveProvidersFn != nil {
		return s.ActiveProvidersFn(ctx, actor)
	}
	return nil, nil
}

func (s TransportFacadeStub) NetworkStats(ctx context.Context, actor model.Actor) (*model.NetworkStats, error) {
	if s.NetworkStatsFn != nil {
		return s.NetworkStatsFn(ctx, actor)
	}
	return &model.NetworkStats{}, nil
}

func (s TransportFacadeStub) VerifyProvider(ctx context.Context, actor model.Actor, id int64) (*model.Provider, error) {
	if s.VerifyProviderFn != nil {
		return s.VerifyProviderFn(ctx, actor, id)
	}
	return &model.Provider{ID: 1, UserID: 2, CompanyName: "Fast Haul", VerificationStatus: model.VerificationUnverified}, nil
}

func (s TransportFacadeStub) RejectProvider(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Provider, error) {
	if s.RejectProviderFn != nil {
		return s.RejectProviderFn(ctx, actor, id, reason)
	}
	return &model.Provider{ID: 1, UserID: 2, CompanyName: "Fast Haul", VerificationStatus: model.VerificationUnverified}, nil
}

func (s TransportFacadeStub) Payouts(ctx context.Context, actor model.Actor, limit int) ([]model.Payout, error) {
	if s.PayoutsFn != nil {
		return s.PayoutsFn(ctx, actor, limit)
	}
	return nil, nil
}

func (s TransportFacadeStub) UpdatePayoutStatus(ctx context.Context, actor model.Actor, id int64, to model.PayoutStatus) (*model.Payout, error) {
	if s.UpdatePayoutStatusFn != nil {
		return s.UpdatePayoutStatusFn(ctx, actor, id, to)
	}
	return &model.Payout{ID: 1, OrderID: 1, DriverID: 2, Amount: SampleSplit().Payout, Status: model.PayoutStatusPending}, nil
}

func (s TransportFacadeStub) Checkout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, actor, orderID)
	}
	return &model.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (s TransportFacadeStub) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.HandlePaymentWebhookFn != nil {
		return s.HandlePaymentWebhookFn(ctx, payload, signature)
	}
	return nil
}

func (s TransportFacadeStub) AuditLog(ctx context.Context, actor model.Actor, limit int) ([]model.AuditEntry, error) {
	if s.AuditLogFn != nil {
		return s.AuditLogFn(ctx, actor, limit)
	}
	return nil, nil
}

// PushHubStub records websocket upgrade requests.
type PushHubStub struct {
	UserIDs []int64
	Err     error
}

// ServeWS records the user and answers without upgrading.
func (h *PushHubStub) ServeWS(w http.ResponseWriter, _ *http.Request, userID int64) error {
	if h.Err != nil {
		http.Error(w, h.Err.Error(), http.StatusBadRequest)
		return h.Err
	}
	h.UserIDs = append(h.UserIDs, userID)
	w.WriteHeader(http.StatusNoContent)
	return nil
}
