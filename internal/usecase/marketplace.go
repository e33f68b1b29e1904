package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
	"github.com/polkiloo/autotransit/internal/pricing"
)

const defaultOfferTTL = 24 * time.Hour

// MarketplaceOptions tunes the bidding engine.
type MarketplaceOptions struct {
	OfferTTL time.Duration
}

// MarketplaceUseCase runs order creation and the offer bidding protocol.
type MarketplaceUseCase struct {
	orders    repository.OrderRepository
	offers    repository.OfferRepository
	providers repository.ProviderRepository
	pricing   pricing.Policy
	guard     *Guard
	notifier  Notifier
	offerTTL  time.Duration
	now       func() time.Time
}

// NewMarketplaceUseCase constructs MarketplaceUseCase.
func NewMarketplaceUseCase(repos repository.Factory, policy pricing.Policy, guard *Guard, notifier Notifier, opts MarketplaceOptions) *MarketplaceUseCase {
	ttl := opts.OfferTTL
	if ttl <= 0 {
		ttl = defaultOfferTTL
	}
	return &MarketplaceUseCase{
		orders:    repos.Orders(),
		offers:    repos.Offers(),
		providers: repos.Providers(),
		pricing:   policy,
		guard:     guard,
		notifier:  notifier,
		offerTTL:  ttl,
		now:       time.Now,
	}
}

// Quote previews the price split under the active policy.
func (u *MarketplaceUseCase) Quote(ctx context.Context, actor model.Actor, gross decimal.Decimal) (model.PriceSplit, error) {
	if err := u.guard.Authorize(ctx, actor, OpQuotePrice, "pricing", 0); err != nil {
		return model.PriceSplit{}, err
	}
	return u.pricing.Split(gross)
}

// CreateOrder validates client input, prices it and stores the order as created.
func (u *MarketplaceUseCase) CreateOrder(ctx context.Context, actor model.Actor, in model.NewOrder) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpCreateOrder, "order", 0); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	split, err := u.pricing.Split(in.Price)
	if err != nil {
		return nil, err
	}

	order, err := u.orders.Create(ctx, &model.Order{
		ClientID:         actor.ID,
		VehicleType:      in.VehicleType,
		VehicleMake:      in.VehicleMake,
		VehicleModel:     in.VehicleModel,
		PickupLocation:   in.PickupLocation,
		DeliveryLocation: in.DeliveryLocation,
		PickupDate:       in.PickupDate,
		Notes:            in.Notes,
		Price:            split,
		Status:           model.OrderStatusCreated,
	})
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpCreateOrder, "order", order.ID, map[string]any{
		"total_price": split.Total.StringFixed(2),
	})
	u.notifier.Notify(ctx, newEvent(model.EventOrderCreated, u.now(), map[string]any{
		"order_id":          order.ID,
		"vehicle_type":      order.VehicleType,
		"pickup_location":   order.PickupLocation,
		"delivery_location": order.DeliveryLocation,
		"total_price":       split.Total.StringFixed(2),
	}, order.ClientID))

	return order, nil
}

// SubmitOffer stores a pending bid of an active verified driver on an open order.
func (u *MarketplaceUseCase) SubmitOffer(ctx context.Context, actor model.Actor, orderID int64, in model.NewOffer) (*model.Offer, error) {
	if err := u.guard.Authorize(ctx, actor, OpSubmitOffer, "order", orderID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	// The bid must be able to become the order price once accepted.
	split, err := u.pricing.Split(in.QuotedPrice)
	if err != nil {
		return nil, err
	}

	provider, err := u.eligibleProvider(ctx, actor, OpSubmitOffer, orderID)
	if err != nil {
		return nil, err
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusCreated {
		return nil, domainErrors.ErrOrderNotOpen
	}

	now := u.now()
	offer, err := u.offers.Create(ctx, &model.Offer{
		OrderID:           orderID,
		DriverID:          actor.ID,
		QuotedPrice:       split.Total,
		EstimatedDuration: in.EstimatedDuration,
		Message:           in.Message,
		DriverRating:      provider.Rating,
		CompletedJobs:     provider.CompletedOrders,
		Status:            model.OfferStatusPending,
		ExpiresAt:         now.Add(u.offerTTL).UTC(),
	})
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpSubmitOffer, "offer", offer.ID, map[string]any{
		"order_id":     orderID,
		"quoted_price": offer.QuotedPrice.StringFixed(2),
	})
	u.notifier.Notify(ctx, newEvent(model.EventOfferSubmitted, now, map[string]any{
		"order_id":     orderID,
		"offer_id":     offer.ID,
		"quoted_price": offer.QuotedPrice.StringFixed(2),
	}, order.ClientID))

	return offer, nil
}

// eligibleProvider returns the actor's provider record if it may bid.
func (u *MarketplaceUseCase) eligibleProvider(ctx context.Context, actor model.Actor, op Operation, orderID int64) (*model.Provider, error) {
	provider, err := u.providers.GetByUserID(ctx, actor.ID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, u.guard.Deny(ctx, actor, op, "order", orderID, domainErrors.ErrNotEligible)
	}
	if err != nil {
		return nil, err
	}
	if !provider.IsActive || provider.VerificationStatus != model.VerificationVerified {
		return nil, u.guard.Deny(ctx, actor, op, "order", orderID, domainErrors.ErrNotEligible)
	}
	return provider, nil
}

// ListOffers returns the offers of an order ranked for display.
func (u *MarketplaceUseCase) ListOffers(ctx context.Context, actor model.Actor, orderID int64) ([]model.Offer, error) {
	if _, err := u.ownedOrder(ctx, actor, OpListOffers, orderID); err != nil {
		return nil, err
	}

	offers, err := u.offers.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	for i := range offers {
		offers[i].Status = offers[i].EffectiveStatus(now)
	}
	RankOffers(offers)
	return offers, nil
}

// MyOffers lists the bids of the calling driver, newest first.
func (u *MarketplaceUseCase) MyOffers(ctx context.Context, actor model.Actor) ([]model.Offer, error) {
	if err := u.guard.Authorize(ctx, actor, OpSubmitOffer, "offer", 0); err != nil {
		return nil, err
	}
	offers, err := u.offers.ListByDriver(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	for i := range offers {
		offers[i].Status = offers[i].EffectiveStatus(now)
	}
	return offers, nil
}

// CompareOffers summarises the live pending offers of an order.
func (u *MarketplaceUseCase) CompareOffers(ctx context.Context, actor model.Actor, orderID int64) (*model.OfferComparison, error) {
	if _, err := u.ownedOrder(ctx, actor, OpCompareOffers, orderID); err != nil {
		return nil, err
	}

	offers, err := u.offers.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	live := make([]model.Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.EffectiveStatus(now) == model.OfferStatusPending {
			live = append(live, offer)
		}
	}
	return CompareOffers(live), nil
}

// AcceptOffer atomically accepts one offer, rejects its rivals and confirms the
// order at the accepted price.
func (u *MarketplaceUseCase) AcceptOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Order, *model.Offer, error) {
	if _, err := u.ownedOrder(ctx, actor, OpAcceptOffer, orderID); err != nil {
		return nil, nil, err
	}

	rivals := u.pendingDrivers(ctx, orderID)

	updated, accepted, err := u.offers.Accept(ctx, orderID, offerID, u.pricing.Split, u.now())
	if err != nil {
		return nil, nil, err
	}

	u.guard.Record(ctx, actor, OpAcceptOffer, "offer", accepted.ID, map[string]any{
		"order_id":    orderID,
		"driver_id":   accepted.DriverID,
		"total_price": updated.Price.Total.StringFixed(2),
	})

	now := u.now()
	u.notifier.Notify(ctx, newEvent(model.EventOfferAccepted, now, map[string]any{
		"order_id":      orderID,
		"offer_id":      accepted.ID,
		"total_price":   updated.Price.Total.StringFixed(2),
		"driver_payout": updated.Price.Payout.StringFixed(2),
	}, orderRecipients(updated)...))

	losers := make([]int64, 0, len(rivals))
	for _, driverID := range rivals {
		if driverID != accepted.DriverID {
			losers = append(losers, driverID)
		}
	}
	if len(losers) > 0 {
		u.notifier.Notify(ctx, newEvent(model.EventOfferRejected, now, map[string]any{
			"order_id": orderID,
			"reason":   "another offer was accepted",
		}, losers...))
	}

	return updated, accepted, nil
}

// RejectOffer declines one pending offer.
func (u *MarketplaceUseCase) RejectOffer(ctx context.Context, actor model.Actor, orderID, offerID int64) (*model.Offer, error) {
	if _, err := u.ownedOrder(ctx, actor, OpRejectOffer, orderID); err != nil {
		return nil, err
	}

	offer, err := u.offers.Reject(ctx, orderID, offerID)
	if err != nil {
		return nil, err
	}

	u.guard.Record(ctx, actor, OpRejectOffer, "offer", offer.ID, map[string]any{"order_id": orderID})
	u.notifier.Notify(ctx, newEvent(model.EventOfferRejected, u.now(), map[string]any{
		"order_id": orderID,
		"offer_id": offer.ID,
	}, offer.DriverID))

	return offer, nil
}

// AvailableOrders lists open orders the driver has not bid on yet.
func (u *MarketplaceUseCase) AvailableOrders(ctx context.Context, actor model.Actor) ([]model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, OpAvailableOrders, "order", 0); err != nil {
		return nil, err
	}
	return u.orders.ListOpenForDriver(ctx, actor.ID)
}

// ownedOrder authorizes op and requires the actor to own the order or be an admin.
func (u *MarketplaceUseCase) ownedOrder(ctx context.Context, actor model.Actor, op Operation, orderID int64) (*model.Order, error) {
	if err := u.guard.Authorize(ctx, actor, op, "order", orderID); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() && order.ClientID != actor.ID {
		return nil, u.guard.Deny(ctx, actor, op, "order", orderID, notRelated("order belongs to another client"))
	}
	return order, nil
}

func (u *MarketplaceUseCase) pendingDrivers(ctx context.Context, orderID int64) []int64 {
	offers, err := u.offers.ListByOrder(ctx, orderID)
	if err != nil {
		return nil
	}
	drivers := make([]int64, 0, len(offers))
	for _, offer := range offers {
		if offer.Status == model.OfferStatusPending {
			drivers = append(drivers, offer.DriverID)
		}
	}
	return drivers
}

// RankOffers orders offers by driver rating descending with unrated drivers last,
// then by quoted price ascending, then by submission time.
func RankOffers(offers []model.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		switch {
		case a.DriverRating != nil && b.DriverRating == nil:
			return true
		case a.DriverRating == nil && b.DriverRating != nil:
			return false
		case a.DriverRating != nil && !a.DriverRating.Equal(*b.DriverRating):
			return a.DriverRating.GreaterThan(*b.DriverRating)
		}
		if !a.QuotedPrice.Equal(b.QuotedPrice) {
			return a.QuotedPrice.LessThan(b.QuotedPrice)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// CompareOffers computes price statistics and the best-rated offer.
func CompareOffers(offers []model.Offer) *model.OfferComparison {
	cmp := &model.OfferComparison{
		MinPrice:     decimal.Zero,
		MaxPrice:     decimal.Zero,
		AveragePrice: decimal.Zero,
	}
	if len(offers) == 0 {
		return cmp
	}

	ranked := make([]model.Offer, len(offers))
	copy(ranked, offers)
	RankOffers(ranked)

	sum := decimal.Zero
	cmp.MinPrice = ranked[0].QuotedPrice
	cmp.MaxPrice = ranked[0].QuotedPrice
	for _, offer := range ranked {
		sum = sum.Add(offer.QuotedPrice)
		if offer.QuotedPrice.LessThan(cmp.MinPrice) {
			cmp.MinPrice = offer.QuotedPrice
		}
		if offer.QuotedPrice.GreaterThan(cmp.MaxPrice) {
			cmp.MaxPrice = offer.QuotedPrice
		}
	}
	cmp.TotalOffers = len(ranked)
	cmp.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(ranked)))).RoundBank(2)
	if ranked[0].DriverRating != nil {
		best := ranked[0]
		cmp.BestRated = &best
	}
	return cmp
}
