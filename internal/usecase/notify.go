package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

// Notifier hands events to notification channels. It must not block on delivery
// and never reports delivery failures.
type Notifier interface {
	Notify(ctx context.Context, event model.Event)
}

func newEvent(typ model.EventType, now time.Time, payload map[string]any, recipients ...int64) model.Event {
	return model.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Recipients: recipients,
		Payload:    payload,
		OccurredAt: now.UTC(),
	}
}

func orderRecipients(order *model.Order) []int64 {
	recipients := []int64{order.ClientID}
	if order.DriverID != nil {
		recipients = append(recipients, *order.DriverID)
	}
	return recipients
}
