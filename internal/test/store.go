package test

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

// MemoryStore is an in-memory repository.Factory. Every multi-row operation runs
// under one mutex, which gives the same all-or-nothing guarantees the database
// transactions give, so use case tests can exercise the real guards.
type MemoryStore struct {
	mu sync.Mutex

	Now func() time.Time

	users     map[int64]*model.User
	orders    map[int64]*model.Order
	offers    map[int64]*model.Offer
	providers map[int64]*model.Provider
	profiles  map[int64]*model.DriverProfile
	payouts   map[int64]*model.Payout
	payments  map[int64]*model.Payment
	audit     []model.AuditEntry

	nextID int64

	// AuditErr makes audit writes fail.
	AuditErr error
	// PaidAtErr fails the next attempt to mark an order paid, once.
	PaidAtErr error
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:       time.Now,
		users:     make(map[int64]*model.User),
		orders:    make(map[int64]*model.Order),
		offers:    make(map[int64]*model.Offer),
		providers: make(map[int64]*model.Provider),
		profiles:  make(map[int64]*model.DriverProfile),
		payouts:   make(map[int64]*model.Payout),
		payments:  make(map[int64]*model.Payment),
	}
}

var _ repository.Factory = (*MemoryStore)(nil)

func (s *MemoryStore) Users() repository.UserRepository                   { return memUsers{s} }
func (s *MemoryStore) Orders() repository.OrderRepository                 { return memOrders{s} }
func (s *MemoryStore) Offers() repository.OfferRepository                 { return memOffers{s} }
func (s *MemoryStore) Providers() repository.ProviderRepository           { return memProviders{s} }
func (s *MemoryStore) DriverProfiles() repository.DriverProfileRepository { return memProfiles{s} }
func (s *MemoryStore) Payouts() repository.PayoutRepository               { return memPayouts{s} }
func (s *MemoryStore) Payments() repository.PaymentRepository             { return memPayments{s} }
func (s *MemoryStore) Audit() repository.AuditRepository                  { return memAudit{s} }

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) now() time.Time {
	return s.Now().UTC()
}

// SeedUser stores a user and returns its id.
func (s *MemoryStore) SeedUser(login string, role model.Role) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: s.id(), Login: login, Role: role, PasswordHash: "hash:secret", CreatedAt: s.now()}
	s.users[u.ID] = u
	return u.ID
}

// SeedProvider stores a provider for userID in the given status.
func (s *MemoryStore) SeedProvider(userID int64, status model.VerificationStatus, rating *decimal.Decimal) *model.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Provider{
		ID:                 s.id(),
		UserID:             userID,
		CompanyName:        fmt.Sprintf("Carrier %d", userID),
		TaxNumber:          fmt.Sprintf("DE%09d", userID),
		VerificationStatus: status,
		IsActive:           status == model.VerificationVerified,
		Rating:             rating,
		CreatedAt:          s.now(),
		UpdatedAt:          s.now(),
	}
	s.providers[p.ID] = p
	cp := *p
	return &cp
}

// PayoutCount reports how many payouts exist for orderID.
func (s *MemoryStore) PayoutCount(orderID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payouts {
		if p.OrderID == orderID {
			n++
		}
	}
	return n
}

// AuditEntries returns a copy of recorded entries.
func (s *MemoryStore) AuditEntries() []model.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.audit)
}

// OfferSnapshot returns offers of orderID keyed by id.
func (s *MemoryStore) OfferSnapshot(orderID int64) map[int64]model.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]model.Offer)
	for _, o := range s.offers {
		if o.OrderID == orderID {
			out[o.ID] = *o
		}
	}
	return out
}

// SetOfferExpiry overrides the expiry of an offer.
func (s *MemoryStore) SetOfferExpiry(offerID int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.offers[offerID]; ok {
		o.ExpiresAt = at
	}
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == user.Login {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	u := *user
	u.ID = r.s.id()
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = &u
	cp := u
	return &cp, nil
}

func (r memUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memOrders struct{ s *MemoryStore }

func (r memOrders) Create(_ context.Context, order *model.Order) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := *order
	o.ID = r.s.id()
	o.CreatedAt = r.s.now()
	o.UpdatedAt = o.CreatedAt
	r.s.orders[o.ID] = &o
	cp := o
	return &cp, nil
}

func (r memOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOrders) list(keep func(*model.Order) bool) []model.Order {
	out := make([]model.Order, 0)
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memOrders) ListByClient(_ context.Context, clientID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(o *model.Order) bool { return o.ClientID == clientID }), nil
}

func (r memOrders) ListByDriver(_ context.Context, driverID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(o *model.Order) bool { return o.AssignedTo(driverID) }), nil
}

func (r memOrders) ListAll(_ context.Context, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.list(func(*model.Order) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrders) ListOpenForDriver(_ context.Context, driverID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bid := make(map[int64]bool)
	for _, o := range r.s.offers {
		if o.DriverID == driverID {
			bid[o.OrderID] = true
		}
	}
	return r.list(func(o *model.Order) bool {
		return o.Status == model.OrderStatusCreated && !bid[o.ID]
	}), nil
}

func (r memOrders) AssignDriver(_ context.Context, orderID, driverID int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusCreated || o.DriverID != nil {
		if o.Status == model.OrderStatusConfirmed || o.Status == model.OrderStatusCreated {
			return nil, domainErrors.ErrConcurrency
		}
		return nil, domainErrors.ErrInvalidTransition
	}
	now := r.s.now()
	id := driverID
	o.DriverID = &id
	o.Status = model.OrderStatusConfirmed
	o.UpdatedAt = now
	r.s.rejectPending(orderID, 0, now)
	r.s.bumpProviderOrders(driverID)
	cp := *o
	return &cp, nil
}

func (r memOrders) Transition(_ context.Context, orderID int64, from []model.OrderStatus, to model.OrderStatus) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !slices.Contains(from, o.Status) {
		return nil, domainErrors.ErrConcurrency
	}
	now := r.s.now()
	o.Status = to
	o.UpdatedAt = now
	if to == model.OrderStatusCancelled {
		r.s.rejectPending(orderID, 0, now)
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) Complete(_ context.Context, orderID, driverID int64) (*model.Order, *model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, nil, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusEnroute || !o.AssignedTo(driverID) {
		return nil, nil, domainErrors.ErrInvalidTransition
	}
	for _, p := range r.s.payouts {
		if p.OrderID == orderID {
			return nil, nil, domainErrors.ErrPayoutExists
		}
	}

	now := r.s.now()
	o.Status = model.OrderStatusCompleted
	o.DeliveryDate = &now
	o.UpdatedAt = now

	profile, ok := r.s.profiles[driverID]
	if !ok {
		profile = &model.DriverProfile{UserID: driverID, TotalEarnings: decimal.Zero}
		r.s.profiles[driverID] = profile
	}
	profile.CompletedOrders++
	profile.TotalEarnings = profile.TotalEarnings.Add(o.Price.Payout)
	profile.UpdatedAt = now

	for _, p := range r.s.providers {
		if p.UserID == driverID {
			p.CompletedOrders++
			p.UpdatedAt = now
		}
	}

	payout := &model.Payout{
		ID:        r.s.id(),
		OrderID:   orderID,
		DriverID:  driverID,
		Amount:    o.Price.Payout,
		Status:    model.PayoutStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.payouts[payout.ID] = payout

	oc, pc := *o, *payout
	return &oc, &pc, nil
}

func (r memOrders) Rate(_ context.Context, orderID, clientID int64, rating int, feedback string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok || o.ClientID != clientID {
		return nil, domainErrors.ErrNotFound
	}
	if o.DriverRating != nil {
		return nil, domainErrors.ErrAlreadyRated
	}
	if o.Status != model.OrderStatusCompleted || o.DriverID == nil {
		return nil, domainErrors.ErrInvalidTransition
	}
	rt, fb := rating, feedback
	o.DriverRating = &rt
	o.DriverFeedback = &fb
	o.UpdatedAt = r.s.now()

	driverID := *o.DriverID
	sum, n := 0, 0
	for _, other := range r.s.orders {
		if other.AssignedTo(driverID) && other.DriverRating != nil {
			sum += *other.DriverRating
			n++
		}
	}
	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).RoundBank(2)
	if profile, ok := r.s.profiles[driverID]; ok {
		profile.Rating = &avg
	}
	for _, p := range r.s.providers {
		if p.UserID == driverID {
			pr := avg
			p.Rating = &pr
		}
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) Delete(_ context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[orderID]; !ok {
		return domainErrors.ErrNotFound
	}
	for _, p := range r.s.payouts {
		if p.OrderID == orderID {
			return fmt.Errorf("%w: order has a payout", domainErrors.ErrConflict)
		}
	}
	delete(r.s.orders, orderID)
	for id, o := range r.s.offers {
		if o.OrderID == orderID {
			delete(r.s.offers, id)
		}
	}
	return nil
}

func (r memOrders) Statistics(_ context.Context) (*model.OrderStatistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &model.OrderStatistics{
		ByStatus:        make(map[model.OrderStatus]int64),
		Revenue:         decimal.Zero,
		CommissionTotal: decimal.Zero,
		InsuranceTotal:  decimal.Zero,
		PayoutTotal:     decimal.Zero,
	}
	for _, o := range r.s.orders {
		stats.Total++
		stats.ByStatus[o.Status]++
		if o.Status == model.OrderStatusCompleted {
			stats.Revenue = stats.Revenue.Add(o.Price.Total)
			stats.CommissionTotal = stats.CommissionTotal.Add(o.Price.Commission)
			stats.InsuranceTotal = stats.InsuranceTotal.Add(o.Price.Insurance)
			stats.PayoutTotal = stats.PayoutTotal.Add(o.Price.Payout)
		}
	}
	return stats, nil
}

type memOffers struct{ s *MemoryStore }

func (r memOffers) Create(_ context.Context, offer *model.Offer) (*model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[offer.OrderID]
	if !ok || o.Status != model.OrderStatusCreated {
		return nil, domainErrors.ErrOrderNotOpen
	}
	for _, existing := range r.s.offers {
		if existing.OrderID == offer.OrderID && existing.DriverID == offer.DriverID {
			return nil, domainErrors.ErrOfferExists
		}
	}
	of := *offer
	of.ID = r.s.id()
	of.CreatedAt = r.s.now()
	of.UpdatedAt = of.CreatedAt
	r.s.offers[of.ID] = &of
	cp := of
	return &cp, nil
}

func (r memOffers) GetByID(_ context.Context, id int64) (*model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.offers[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOffers) ListByOrder(_ context.Context, orderID int64) ([]model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Offer, 0)
	for _, o := range r.s.offers {
		if o.OrderID == orderID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memOffers) ListByDriver(_ context.Context, driverID int64) ([]model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Offer, 0)
	for _, o := range r.s.offers {
		if o.DriverID == driverID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOffers) Accept(_ context.Context, orderID, offerID int64, split repository.SplitFunc, now time.Time) (*model.Order, *model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[orderID]
	if !ok {
		return nil, nil, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusCreated || order.DriverID != nil {
		return nil, nil, domainErrors.ErrOrderNotOpen
	}
	offer, ok := r.s.offers[offerID]
	if !ok || offer.OrderID != orderID {
		return nil, nil, domainErrors.ErrNotFound
	}
	if offer.Status != model.OfferStatusPending {
		return nil, nil, domainErrors.ErrOfferNotPending
	}
	if !now.Before(offer.ExpiresAt) {
		return nil, nil, domainErrors.ErrOfferExpired
	}
	price, err := split(offer.QuotedPrice)
	if err != nil {
		return nil, nil, err
	}

	offer.Status = model.OfferStatusAccepted
	offer.UpdatedAt = now
	r.s.rejectPending(orderID, offerID, now)

	driverID := offer.DriverID
	order.DriverID = &driverID
	order.Price = price
	order.Status = model.OrderStatusConfirmed
	order.UpdatedAt = now
	r.s.bumpProviderOrders(driverID)

	oc, fc := *order, *offer
	return &oc, &fc, nil
}

func (r memOffers) Reject(_ context.Context, orderID, offerID int64) (*model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	offer, ok := r.s.offers[offerID]
	if !ok || offer.OrderID != orderID {
		return nil, domainErrors.ErrNotFound
	}
	if offer.Status != model.OfferStatusPending {
		return nil, domainErrors.ErrOfferNotPending
	}
	offer.Status = model.OfferStatusRejected
	offer.UpdatedAt = r.s.now()
	cp := *offer
	return &cp, nil
}

func (r memOffers) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, o := range r.s.offers {
		if o.Status == model.OfferStatusPending && !now.Before(o.ExpiresAt) {
			o.Status = model.OfferStatusExpired
			o.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) rejectPending(orderID, keep int64, now time.Time) {
	for _, o := range s.offers {
		if o.OrderID == orderID && o.ID != keep && o.Status == model.OfferStatusPending {
			o.Status = model.OfferStatusRejected
			o.UpdatedAt = now
		}
	}
}

func (s *MemoryStore) bumpProviderOrders(driverID int64) {
	for _, p := range s.providers {
		if p.UserID == driverID {
			p.TotalOrders++
		}
	}
}

type memProviders struct{ s *MemoryStore }

func (r memProviders) Create(_ context.Context, provider *model.Provider) (*model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.providers {
		if p.UserID == provider.UserID {
			return nil, domainErrors.ErrProviderExists
		}
	}
	p := *provider
	p.ID = r.s.id()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.providers[p.ID] = &p
	cp := p
	return &cp, nil
}

func (r memProviders) GetByID(_ context.Context, id int64) (*model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.providers[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memProviders) GetByUserID(_ context.Context, userID int64) (*model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.providers {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memProviders) filter(keep func(*model.Provider) bool) []model.Provider {
	out := make([]model.Provider, 0)
	for _, p := range r.s.providers {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memProviders) ListByStatus(_ context.Context, statuses ...model.VerificationStatus) ([]model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(p *model.Provider) bool { return slices.Contains(statuses, p.VerificationStatus) }), nil
}

func (r memProviders) ListActive(_ context.Context) ([]model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(p *model.Provider) bool { return p.IsActive }), nil
}

func (r memProviders) Review(_ context.Context, review model.ProviderReview) (*model.Provider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.providers[review.ProviderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !slices.Contains(review.From, p.VerificationStatus) {
		return nil, domainErrors.ErrInvalidTransition
	}
	now := r.s.now()
	p.VerificationStatus = review.To
	p.IsActive = review.To == model.VerificationVerified
	if review.ReviewerID != 0 {
		reviewer := review.ReviewerID
		p.ReviewedBy = &reviewer
		p.ReviewedAt = &now
	}
	if review.To == model.VerificationRejected {
		p.RejectionReason = review.Reason
	} else {
		p.RejectionReason = ""
	}
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (r memProviders) Stats(_ context.Context) (*model.NetworkStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &model.NetworkStats{AverageRating: decimal.Zero}
	sum, rated := decimal.Zero, int64(0)
	for _, p := range r.s.providers {
		stats.Total++
		if p.IsActive {
			stats.Active++
		}
		switch p.VerificationStatus {
		case model.VerificationVerified:
			stats.Verified++
		case model.VerificationUnverified, model.VerificationInReview:
			stats.Pending++
		}
		stats.CompletedOrders += int64(p.CompletedOrders)
		if p.Rating != nil {
			sum = sum.Add(*p.Rating)
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = sum.Div(decimal.NewFromInt(rated)).RoundBank(2)
	}
	return stats, nil
}

type memProfiles struct{ s *MemoryStore }

func (r memProfiles) GetByUserID(_ context.Context, userID int64) (*model.DriverProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memPayouts struct{ s *MemoryStore }

func (r memPayouts) GetByID(_ context.Context, id int64) (*model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payouts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memPayouts) list(keep func(*model.Payout) bool) []model.Payout {
	out := make([]model.Payout, 0)
	for _, p := range r.s.payouts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memPayouts) ListByDriver(_ context.Context, driverID int64) ([]model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(p *model.Payout) bool { return p.DriverID == driverID }), nil
}

func (r memPayouts) ListAll(_ context.Context, limit int) ([]model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.list(func(*model.Payout) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPayouts) UpdateStatus(_ context.Context, id int64, from, to model.PayoutStatus) (*model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payouts[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if p.Status != from {
		return nil, domainErrors.ErrConcurrency
	}
	p.Status = to
	p.UpdatedAt = r.s.now()
	cp := *p
	return &cp, nil
}

type memPayments struct{ s *MemoryStore }

func (r memPayments) Create(_ context.Context, payment *model.Payment) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.SessionID == payment.SessionID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	p := *payment
	p.ID = r.s.id()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.payments[p.ID] = &p
	cp := p
	return &cp, nil
}

func (r memPayments) GetBySession(_ context.Context, sessionID string) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.SessionID == sessionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memPayments) Settle(_ context.Context, sessionID string, to model.PaymentStatus, at time.Time) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.SessionID != sessionID {
			continue
		}
		if p.Status != model.PaymentStatusPending {
			return nil, domainErrors.ErrConcurrency
		}
		// both rows change together or not at all
		var order *model.Order
		if to == model.PaymentStatusCompleted {
			if r.s.PaidAtErr != nil {
				err := r.s.PaidAtErr
				r.s.PaidAtErr = nil
				return nil, err
			}
			o, ok := r.s.orders[p.OrderID]
			if !ok {
				return nil, domainErrors.ErrNotFound
			}
			order = o
		}
		p.Status = to
		p.UpdatedAt = at
		if order != nil && order.PaidAt == nil {
			paidAt := at
			order.PaidAt = &paidAt
			order.UpdatedAt = at
		}
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memAudit struct{ s *MemoryStore }

func (r memAudit) Record(_ context.Context, entry model.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.AuditErr != nil {
		return r.s.AuditErr
	}
	entry.ID = int64(len(r.s.audit) + 1)
	r.s.audit = append(r.s.audit, entry)
	return nil
}

func (r memAudit) List(_ context.Context, limit int) ([]model.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.AuditEntry, 0, len(r.s.audit))
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		out = append(out, r.s.audit[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
