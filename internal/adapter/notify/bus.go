package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type closer interface {
	Close() error
}

// BusChannel publishes events to a RabbitMQ topic exchange using the event
// type as routing key.
type BusChannel struct {
	exchange string
	pub      publisher
	closers  []closer
	logger   *slog.Logger
}

// DialBus connects to RabbitMQ and declares the durable topic exchange.
func DialBus(url, exchange string, logger *slog.Logger) (*BusChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	logger.Info("connected to rabbitmq", slog.String("exchange", exchange))
	return newBusChannel(exchange, ch, logger, ch, conn), nil
}

func newBusChannel(exchange string, pub publisher, logger *slog.Logger, closers ...closer) *BusChannel {
	return &BusChannel{exchange: exchange, pub: pub, closers: closers, logger: logger}
}

// Name identifies the channel.
func (c *BusChannel) Name() string { return "amqp" }

// Deliver publishes the event as a persistent JSON message.
func (c *BusChannel) Deliver(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.pub.PublishWithContext(publishCtx, c.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close releases the channel and connection.
func (c *BusChannel) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
