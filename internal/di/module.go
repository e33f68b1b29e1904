package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/adapter/notify"
	"github.com/polkiloo/autotransit/internal/adapter/payment"
	"github.com/polkiloo/autotransit/internal/adapter/push"
	"github.com/polkiloo/autotransit/internal/app"
	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/logger"
	"github.com/polkiloo/autotransit/internal/pkg/auth"
	"github.com/polkiloo/autotransit/internal/pricing"
	"github.com/polkiloo/autotransit/internal/server/http/router"
	"github.com/polkiloo/autotransit/internal/storage/postgres"
	"github.com/polkiloo/autotransit/internal/usecase"
	"github.com/polkiloo/autotransit/internal/worker"
)

// Module composes the whole service graph. Extra options are appended last,
// so callers can fx.Replace any component.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		pricing.Module,
		payment.Module,
		notify.Module,
		push.Module,
		worker.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
