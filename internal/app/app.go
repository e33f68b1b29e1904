package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/server/http/handlers"
	"github.com/polkiloo/autotransit/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewTransportFacade,
		func(f *TransportFacade) handlers.TransportFacade { return f },
		func(f *TransportFacade) AdminBootstrapper { return f },
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

// AdminBootstrapper creates the configured super admin account.
type AdminBootstrapper interface {
	EnsureSuperAdmin(ctx context.Context, login, password string) error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.Dispatcher
	Expirer    *worker.OfferExpirer
	Admin      AdminBootstrapper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.AdminLogin != "" {
				if err := p.Admin.EnsureSuperAdmin(ctx, p.Config.AdminLogin, p.Config.AdminPassword); err != nil {
					return fmt.Errorf("bootstrap super admin: %w", err)
				}
			}

			p.Logger.Info("starting autotransit", slog.String("addr", p.Server.Addr))
			runCtx := context.WithoutCancel(ctx)
			p.Dispatcher.Start(runCtx)
			p.Expirer.Start(runCtx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Expirer.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			// events of the last requests are delivered after the server drains
			p.Dispatcher.Stop(shutdownCtx)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("autotransit stopped")
			return nil
		},
	})
}
