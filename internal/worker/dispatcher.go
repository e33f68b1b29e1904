package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/autotransit/internal/adapter/notify"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

const deliveryTimeout = 10 * time.Second

// Dispatcher fans committed events out to notification channels on a pool of
// workers. Notify never blocks the caller: when the queue is full the event is
// dropped and logged.
type Dispatcher struct {
	channels []notify.Channel
	workers  int
	logger   *slog.Logger

	queue   chan model.Event
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// NewDispatcher constructs the notification worker pool.
func NewDispatcher(channels []notify.Channel, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	active := make([]notify.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			active = append(active, ch)
		}
	}
	return &Dispatcher{
		channels: active,
		workers:  workers,
		logger:   logger,
		queue:    make(chan model.Event, queueSize),
	}
}

// Notify enqueues the event for delivery.
func (d *Dispatcher) Notify(_ context.Context, event model.Event) {
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification queue full, dropping event",
			slog.String("event_id", event.ID),
			slog.String("type", string(event.Type)))
	}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop cancels the workers, waits for them and delivers what is still queued.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.running = false
	d.mu.Unlock()

	d.wg.Wait()
	d.drain(ctx)
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(context.WithoutCancel(ctx), event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := len(d.queue); n > 0 {
				d.logger.Warn("notifications left undelivered at shutdown", slog.Int("count", n))
			}
			return
		case event := <-d.queue:
			d.deliver(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event model.Event) {
	for _, ch := range d.channels {
		deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		err := ch.Deliver(deliverCtx, event)
		cancel()
		if err != nil {
			d.logger.Error("notification delivery failed",
				slog.String("channel", ch.Name()),
				slog.String("event_id", event.ID),
				slog.String("type", string(event.Type)),
				slog.String("error", err.Error()))
		}
	}
}
