package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/adapter/notify"
	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/domain/repository"
	"github.com/polkiloo/autotransit/internal/usecase"
)

// Module provides the notification dispatcher and the offer expiry sweeper.
// Both are started and stopped by the application lifecycle.
var Module = fx.Provide(
	newDispatcher,
	func(d *Dispatcher) usecase.Notifier { return d },
	newOfferExpirer,
)

type dispatcherParams struct {
	fx.In

	Config   *config.Config
	Channels []notify.Channel `group:"notify_channels"`
	Logger   *slog.Logger
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Channels, p.Config.NotifyWorkers, p.Config.NotifyQueueSize, p.Logger)
}

func newOfferExpirer(cfg *config.Config, repos repository.Factory, logger *slog.Logger) *OfferExpirer {
	return NewOfferExpirer(repos.Offers(), cfg.OfferSweepInterval, logger)
}
