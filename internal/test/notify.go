package test

import (
	"context"
	"sync"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// NotifierStub records dispatched events.
type NotifierStub struct {
	mu     sync.Mutex
	events []model.Event
}

// Notify stores the event.
func (n *NotifierStub) Notify(_ context.Context, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns a copy of the recorded events.
func (n *NotifierStub) Events() []model.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Event, len(n.events))
	copy(out, n.events)
	return out
}

// OfType returns recorded events of the given type.
func (n *NotifierStub) OfType(typ model.EventType) []model.Event {
	var out []model.Event
	for _, e := range n.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// AuditorStub records audit entries in memory.
type AuditorStub struct {
	mu      sync.Mutex
	Entries []model.AuditEntry
}

// Record stores the entry.
func (a *AuditorStub) Record(_ context.Context, entry model.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
}

// ChannelStub is a notification channel with an optional failure.
type ChannelStub struct {
	NameVal string
	Err     error

	mu        sync.Mutex
	delivered []model.Event
	Delivered chan model.Event
}

// Name identifies the channel.
func (c *ChannelStub) Name() string {
	if c.NameVal != "" {
		return c.NameVal
	}
	return "stub"
}

// Deliver records the event and returns the configured error.
func (c *ChannelStub) Deliver(_ context.Context, event model.Event) error {
	c.mu.Lock()
	c.delivered = append(c.delivered, event)
	c.mu.Unlock()
	if c.Delivered != nil {
		c.Delivered <- event
	}
	return c.Err
}

// DeliveredEvents returns a copy of the events seen so far.
func (c *ChannelStub) DeliveredEvents() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Event, len(c.delivered))
	copy(out, c.delivered)
	return out
}
