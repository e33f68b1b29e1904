package notify

import (
	"context"
	"log/slog"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// Channel delivers committed domain events to one transport.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, event model.Event) error
}

// LogChannel writes events to the application log. It is always registered so
// that events stay visible when no external transport is configured.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a log-backed channel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

// Name identifies the channel.
func (c *LogChannel) Name() string { return "log" }

// Deliver logs the event at info level.
func (c *LogChannel) Deliver(_ context.Context, event model.Event) error {
	c.logger.Info("notification",
		slog.String("event_id", event.ID),
		slog.String("type", string(event.Type)),
		slog.Any("recipients", event.Recipients))
	return nil
}
