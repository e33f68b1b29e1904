package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/domain/repository"
)

// Module provides the configured notification channels to the
// "notify_channels" value group.
var Module = fx.Provide(
	fx.Annotate(
		newChannels,
		fx.ResultTags(`group:"notify_channels,flatten"`),
	),
)

type channelParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	Config    *config.Config
	Repos     repository.Factory
	Logger    *slog.Logger
}

func newChannels(p channelParams) ([]Channel, error) {
	channels := []Channel{NewLogChannel(p.Logger)}

	if p.Config.AMQPURL != "" {
		bus, err := DialBus(p.Config.AMQPURL, p.Config.AMQPExchange, p.Logger)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return bus.Close() },
		})
		channels = append(channels, bus)
	}

	if p.Config.SESRegion != "" && p.Config.EmailFrom != "" {
		email, err := NewEmailChannel(p.Ctx, p.Config.SESRegion, p.Config.EmailFrom, p.Repos.Users(), p.Logger)
		if err != nil {
			return nil, err
		}
		channels = append(channels, email)
	}

	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name()
	}
	p.Logger.Info("notification channels configured", slog.Any("channels", names))
	return channels, nil
}
