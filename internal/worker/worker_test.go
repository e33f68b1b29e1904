package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/autotransit/internal/adapter/notify"
	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/domain/model"
	testhelpers "github.com/polkiloo/autotransit/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewDispatcherDefaults(t *testing.T) {
	d := NewDispatcher([]notify.Channel{nil, &testhelpers.ChannelStub{}}, 0, 0, testLogger())
	if d.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", d.workers)
	}
	if cap(d.queue) != 1 {
		t.Fatalf("expected queue size default to 1, got %d", cap(d.queue))
	}
	if len(d.channels) != 1 {
		t.Fatalf("expected nil channels to be skipped, got %d", len(d.channels))
	}
}

func TestDispatcherFansOutToChannels(t *testing.T) {
	first := &testhelpers.ChannelStub{NameVal: "first"}
	second := &testhelpers.ChannelStub{NameVal: "second"}
	d := NewDispatcher([]notify.Channel{first, second}, 2, 8, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	d.Start(ctx)

	for i := 0; i < 3; i++ {
		d.Notify(context.Background(), model.Event{ID: string(rune('a' + i)), Type: model.EventOrderCreated})
	}
	waitFor(t, func() bool {
		return len(first.DeliveredEvents()) == 3 && len(second.DeliveredEvents()) == 3
	})
	d.Stop(context.Background())
}

func TestDispatcherLogsChannelFailures(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	failing := &testhelpers.ChannelStub{NameVal: "email", Err: errors.New("ses down")}
	healthy := &testhelpers.ChannelStub{NameVal: "push"}
	d := NewDispatcher([]notify.Channel{failing, healthy}, 1, 4, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Notify(context.Background(), model.Event{ID: "evt-1", Type: model.EventPayoutCreated})
	waitFor(t, func() bool { return len(healthy.DeliveredEvents()) == 1 })
	d.Stop(context.Background())

	out := logs.String()
	if !strings.Contains(out, "notification delivery failed") || !strings.Contains(out, `"channel":"email"`) {
		t.Fatalf("expected failure log, got %s", out)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	ch := &testhelpers.ChannelStub{}
	d := NewDispatcher([]notify.Channel{ch}, 1, 1, logger)

	d.Notify(context.Background(), model.Event{ID: "kept"})
	d.Notify(context.Background(), model.Event{ID: "dropped"})

	if !strings.Contains(logs.String(), "notification queue full") {
		t.Fatalf("expected drop log, got %s", logs.String())
	}

	// queued events are delivered on shutdown
	d.Stop(context.Background())
	events := ch.DeliveredEvents()
	if len(events) != 1 || events[0].ID != "kept" {
		t.Fatalf("expected only the queued event, got %+v", events)
	}
}

func TestDispatcherNotifyDoesNotBlock(t *testing.T) {
	block := make(chan model.Event)
	ch := &testhelpers.ChannelStub{Delivered: block}
	d := NewDispatcher([]notify.Channel{ch}, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(context.Background(), model.Event{ID: "evt"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a stuck channel")
	}

	<-block
	cancel()
	go func() {
		for range block {
		}
	}()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer stopCancel()
	d.Stop(stopCtx)
	close(block)
}

type expireStub struct {
	calls atomic.Int32
	err   error
	n     int64
	at    atomic.Value
}

func (s *expireStub) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	s.calls.Add(1)
	s.at.Store(now)
	return s.n, s.err
}

func TestOfferExpirerSweepsPeriodically(t *testing.T) {
	store := &expireStub{n: 2}
	e := NewOfferExpirer(store, 5*time.Millisecond, testLogger())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	e.Start(context.Background())
	e.Start(context.Background())
	waitFor(t, func() bool { return store.calls.Load() >= 2 })
	e.Stop()

	if got := store.at.Load().(time.Time); !got.Equal(fixed) {
		t.Fatalf("expected sweep at %v, got %v", fixed, got)
	}
	calls := store.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if store.calls.Load() != calls {
		t.Fatal("expected no sweeps after stop")
	}
}

func TestOfferExpirerLogsErrors(t *testing.T) {
	var logs syncBuffer
	store := &expireStub{err: errors.New("db down")}
	e := NewOfferExpirer(store, time.Minute, slog.New(slog.NewJSONHandler(&logs, nil)))

	e.Sweep(context.Background())
	if !strings.Contains(logs.String(), "expire stale offers failed") {
		t.Fatalf("expected error log, got %s", logs.String())
	}
}

func TestOfferExpirerDisabled(t *testing.T) {
	store := &expireStub{}
	e := NewOfferExpirer(store, 0, testLogger())
	e.Start(context.Background())
	e.Stop()
	if store.calls.Load() != 0 {
		t.Fatal("expected disabled sweeper not to run")
	}
}

func TestModuleConstructors(t *testing.T) {
	cfg := &config.Config{NotifyWorkers: 3, NotifyQueueSize: 16, OfferSweepInterval: time.Minute}
	d := newDispatcher(dispatcherParams{Config: cfg, Channels: []notify.Channel{&testhelpers.ChannelStub{}}, Logger: testLogger()})
	if d.workers != 3 || cap(d.queue) != 16 {
		t.Fatalf("unexpected dispatcher config: workers=%d queue=%d", d.workers, cap(d.queue))
	}

	e := newOfferExpirer(cfg, testhelpers.NewMemoryStore(), testLogger())
	if e.interval != time.Minute {
		t.Fatalf("unexpected interval %v", e.interval)
	}
}
