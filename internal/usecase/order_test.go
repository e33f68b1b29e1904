package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

func TestCompleteCreatesExactlyOnePayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	order := f.enrouteOrder(t, driver, "1000")

	completed, payout, err := f.orders.Complete(ctx, driver, order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.OrderStatusCompleted || completed.DeliveryDate == nil {
		t.Fatalf("expected completed order with delivery date, got %+v", completed)
	}
	if !payout.Amount.Equal(dec("750")) || payout.Status != model.PayoutStatusPending || payout.DriverID != driver.ID {
		t.Fatalf("unexpected payout %+v", payout)
	}

	_, _, err = f.orders.Complete(ctx, driver, order.ID)
	if !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict on second completion, got %v", err)
	}

	if n := f.store.PayoutCount(order.ID); n != 1 {
		t.Fatalf("expected one payout, got %d", n)
	}
	profile, err := f.orders.DriverProfile(ctx, driver)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.CompletedOrders != 1 || !profile.TotalEarnings.Equal(dec("750")) {
		t.Fatalf("expected stats incremented once, got %+v", profile)
	}
	provider, _ := f.store.Providers().GetByUserID(ctx, driver.ID)
	if provider.CompletedOrders != 1 || provider.TotalOrders != 1 {
		t.Fatalf("unexpected provider counters %+v", provider)
	}
	if got := f.notifier.OfType(model.EventPayoutCreated); len(got) != 1 {
		t.Fatalf("expected one payout event, got %d", len(got))
	}
}

func TestConcurrentCompleteSinglePayout(t *testing.T) {
	f := newFixture(t)
	driver := f.verifiedDriver("driver", "")
	order := f.enrouteOrder(t, driver, "1000")

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.orders.Complete(context.Background(), driver, order.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 || f.store.PayoutCount(order.ID) != 1 {
		t.Fatalf("expected one successful completion and one payout, got %d/%d", ok, f.store.PayoutCount(order.ID))
	}
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, "1000")

	drivers := make([]model.Actor, 6)
	for i := range drivers {
		drivers[i] = f.verifiedDriver("claimer-"+string(rune('a'+i)), "")
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		winner int64
		wins   int
	)
	for _, d := range drivers {
		wg.Add(1)
		go func(driver model.Actor) {
			defer wg.Done()
			_, err := f.orders.Claim(context.Background(), driver, order.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				winner = driver.ID
				return
			}
			if !errors.Is(err, domainErrors.ErrConcurrency) {
				t.Errorf("expected concurrency error for loser, got %v", err)
			}
		}(d)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected one winner, got %d", wins)
	}
	got, _ := f.store.Orders().GetByID(context.Background(), order.ID)
	if !got.AssignedTo(winner) || got.Status != model.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed for %d, got %+v", winner, got)
	}
}

func TestClaimRejectsPendingOffersAndIneligibleDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bidder := f.verifiedDriver("bidder", "")
	claimer := f.verifiedDriver("claimer", "")
	order := f.createOrder(t, "1000")
	offer := f.submit(t, bidder, order.ID, "900")

	inactiveID := f.store.SeedUser("inactive", model.RoleDriver)
	f.store.SeedProvider(inactiveID, model.VerificationUnverified, nil)
	if _, err := f.orders.Claim(ctx, model.Actor{ID: inactiveID, Role: model.RoleDriver}, order.ID); !errors.Is(err, domainErrors.ErrNotEligible) {
		t.Fatalf("expected not eligible, got %v", err)
	}

	if _, err := f.orders.Claim(ctx, claimer, order.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got := f.store.OfferSnapshot(order.ID)[offer.ID]; got.Status != model.OfferStatusRejected {
		t.Fatalf("expected pending offer rejected after claim, got %s", got.Status)
	}
}

func TestStartTransitGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	other := f.verifiedDriver("other", "")
	order := f.createOrder(t, "1000")

	if _, err := f.orders.StartTransit(ctx, driver, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for unassigned order, got %v", err)
	}
	if _, err := f.orders.Claim(ctx, driver, order.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := f.orders.StartTransit(ctx, other, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for other driver, got %v", err)
	}
	if _, err := f.orders.StartTransit(ctx, f.client, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for client, got %v", err)
	}
	if _, _, err := f.orders.Complete(ctx, driver, order.ID); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition when completing confirmed order, got %v", err)
	}
	started, err := f.orders.StartTransit(ctx, driver, order.ID)
	if err != nil || started.Status != model.OrderStatusEnroute {
		t.Fatalf("expected enroute, got %+v (%v)", started, err)
	}
	if _, err := f.orders.StartTransit(ctx, driver, order.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict on re-entry, got %v", err)
	}
}

func TestCancelRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	stranger := model.Actor{ID: f.store.SeedUser("stranger", model.RoleClient), Role: model.RoleClient}

	order := f.createOrder(t, "1000")
	offer := f.submit(t, driver, order.ID, "900")
	if _, err := f.orders.Cancel(ctx, stranger, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.orders.Cancel(ctx, driver, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for driver, got %v", err)
	}
	cancelled, err := f.orders.Cancel(ctx, f.client, order.ID)
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %+v (%v)", cancelled, err)
	}
	if got := f.store.OfferSnapshot(order.ID)[offer.ID]; got.Status != model.OfferStatusRejected {
		t.Fatalf("expected pending offer rejected on cancel, got %s", got.Status)
	}
	if _, err := f.orders.Cancel(ctx, f.client, order.ID); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	enroute := f.enrouteOrder(t, driver, "1000")
	if _, err := f.orders.Cancel(ctx, f.admin, enroute.ID); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected enroute order not cancellable, got %v", err)
	}

	confirmed := f.createOrder(t, "1000")
	if _, err := f.orders.AssignDriver(ctx, f.admin, confirmed.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.orders.Cancel(ctx, f.admin, confirmed.ID); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestAssignDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	order := f.createOrder(t, "1000")

	if _, err := f.orders.AssignDriver(ctx, f.client, order.ID, driver.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for client, got %v", err)
	}
	if _, err := f.orders.AssignDriver(ctx, f.admin, order.ID, f.client.ID); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for non-driver, got %v", err)
	}
	if _, err := f.orders.AssignDriver(ctx, f.admin, order.ID, 9999); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for unknown driver, got %v", err)
	}
	assigned, err := f.orders.AssignDriver(ctx, f.admin, order.ID, driver.ID)
	if err != nil || !assigned.AssignedTo(driver.ID) {
		t.Fatalf("expected assignment, got %+v (%v)", assigned, err)
	}
	if _, err := f.orders.AssignDriver(ctx, f.admin, order.ID, driver.ID); !errors.Is(err, domainErrors.ErrConcurrency) {
		t.Fatalf("expected concurrency error, got %v", err)
	}
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	other := f.verifiedDriver("other", "")
	stranger := model.Actor{ID: f.store.SeedUser("stranger", model.RoleClient), Role: model.RoleClient}
	order := f.createOrder(t, "1000")

	for _, actor := range []model.Actor{f.client, f.admin, driver, other} {
		if _, err := f.orders.Get(ctx, actor, order.ID); err != nil {
			t.Fatalf("expected %v to see open order, got %v", actor, err)
		}
	}
	if _, err := f.orders.Get(ctx, stranger, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for other client, got %v", err)
	}

	if _, err := f.orders.Claim(ctx, driver, order.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := f.orders.Get(ctx, other, order.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for unassigned driver, got %v", err)
	}
	if _, err := f.orders.Get(ctx, f.client, 31337); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	mine := f.createOrder(t, "1000")
	f.createOrder(t, "1200")
	if _, err := f.orders.Claim(ctx, driver, mine.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	tests := []struct {
		actor model.Actor
		want  int
	}{
		{f.client, 2},
		{driver, 1},
		{f.admin, 2},
	}
	for _, tt := range tests {
		orders, err := f.orders.List(ctx, tt.actor, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(orders) != tt.want {
			t.Fatalf("expected %d orders for %s, got %d", tt.want, tt.actor.Role, len(orders))
		}
	}
}

func TestRateUpdatesAverages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")

	first := f.enrouteOrder(t, driver, "1000")
	if _, err := f.orders.Rate(ctx, f.client, first.ID, 5, "great"); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict for rating unfinished order, got %v", err)
	}
	if _, _, err := f.orders.Complete(ctx, driver, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	second := f.enrouteOrder(t, driver, "1000")
	if _, _, err := f.orders.Complete(ctx, driver, second.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := f.orders.Rate(ctx, f.client, first.ID, 6, ""); !errors.Is(err, domainErrors.ErrInvalidRating) {
		t.Fatalf("expected invalid rating, got %v", err)
	}
	if _, err := f.orders.Rate(ctx, f.client, first.ID, 5, "great"); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if _, err := f.orders.Rate(ctx, f.client, second.ID, 4, "ok"); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if _, err := f.orders.Rate(ctx, f.client, second.ID, 1, "again"); !errors.Is(err, domainErrors.ErrAlreadyRated) {
		t.Fatalf("expected already rated, got %v", err)
	}

	profile, _ := f.orders.DriverProfile(ctx, driver)
	if profile.Rating == nil || !profile.Rating.Equal(dec("4.5")) {
		t.Fatalf("expected profile rating 4.5, got %v", profile.Rating)
	}
	provider, _ := f.store.Providers().GetByUserID(ctx, driver.ID)
	if provider.Rating == nil || !provider.Rating.Equal(dec("4.5")) {
		t.Fatalf("expected provider rating 4.5, got %v", provider.Rating)
	}
}

func TestStatisticsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.verifiedDriver("driver", "")
	done := f.enrouteOrder(t, driver, "1000")
	if _, _, err := f.orders.Complete(ctx, driver, done.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	open := f.createOrder(t, "500")

	if _, err := f.orders.Statistics(ctx, f.client); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	stats, err := f.orders.Statistics(ctx, f.admin)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus[model.OrderStatusCompleted] != 1 || stats.ByStatus[model.OrderStatusCreated] != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if !stats.Revenue.Equal(dec("1000")) || !stats.CommissionTotal.Equal(dec("100")) || !stats.PayoutTotal.Equal(dec("750")) {
		t.Fatalf("unexpected totals %+v", stats)
	}

	if err := f.orders.Delete(ctx, f.admin, open.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected only super admin to delete, got %v", err)
	}
	root := model.Actor{ID: f.store.SeedUser("root", model.RoleSuperAdmin), Role: model.RoleSuperAdmin}
	if err := f.orders.Delete(ctx, root, open.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.orders.Delete(ctx, root, open.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := f.orders.Delete(ctx, root, done.ID); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict for order with payout, got %v", err)
	}
}

func TestDriverProfileDefaultsToEmpty(t *testing.T) {
	f := newFixture(t)
	driver := f.verifiedDriver("driver", "")
	profile, err := f.orders.DriverProfile(context.Background(), driver)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.UserID != driver.ID || profile.CompletedOrders != 0 {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
