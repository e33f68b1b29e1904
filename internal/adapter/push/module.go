package push

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/adapter/notify"
)

// Module provides the websocket hub and registers it as a notification channel.
var Module = fx.Options(
	fx.Provide(
		NewHub,
		fx.Annotate(
			func(h *Hub) notify.Channel { return h },
			fx.ResultTags(`group:"notify_channels"`),
		),
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, hub *Hub) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.Close()
			return nil
		},
	})
}
