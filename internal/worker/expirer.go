package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// OfferStore is the storage operation the sweeper needs.
type OfferStore interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// OfferExpirer periodically marks pending offers past their expiry as expired.
type OfferExpirer struct {
	offers   OfferStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOfferExpirer constructs the sweeper. A non-positive interval disables it.
func NewOfferExpirer(offers OfferStore, interval time.Duration, logger *slog.Logger) *OfferExpirer {
	return &OfferExpirer{
		offers:   offers,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the ticker loop.
func (e *OfferExpirer) Start(ctx context.Context) {
	if e.interval <= 0 {
		e.logger.Info("offer expiry sweeper disabled")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go e.run(runCtx)
}

// Stop waits for the loop to exit.
func (e *OfferExpirer) Stop() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *OfferExpirer) run(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Sweep expires stale offers once.
func (e *OfferExpirer) Sweep(ctx context.Context) {
	n, err := e.offers.ExpireStale(ctx, e.now())
	if err != nil {
		e.logger.Error("expire stale offers failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		e.logger.Info("expired stale offers", slog.Int64("count", n))
	}
}
