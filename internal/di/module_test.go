package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/app"
	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/domain/repository"
	"github.com/polkiloo/autotransit/internal/pricing"
	"github.com/polkiloo/autotransit/internal/storage/postgres"
	"github.com/polkiloo/autotransit/internal/test"
	"github.com/polkiloo/autotransit/internal/usecase"
	"github.com/polkiloo/autotransit/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:         ":0",
		DatabaseURI:        "postgres://stub",
		JWTSecret:          "secret",
		TokenTTL:           time.Hour,
		ShutdownTimeout:    time.Millisecond,
		OfferTTL:           time.Hour,
		OfferSweepInterval: time.Minute,
		NotifyWorkers:      1,
		NotifyQueueSize:    1,
		PaymentCurrency:    "eur",
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewMemoryStore()

	var (
		facade     *app.TransportFacade
		router     *gin.Engine
		notifier   usecase.Notifier
		dispatcher *worker.Dispatcher
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(fx.Annotate(store, fx.As(new(repository.Factory)))),
			fx.Replace(pricing.DefaultPolicy()),
		),
		fx.Populate(&facade, &router, &notifier, &dispatcher),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected transport facade instance")
	}
	if router == nil {
		t.Fatal("expected router instance")
	}
	if notifier != usecase.Notifier(dispatcher) {
		t.Fatal("expected use cases to notify through the dispatcher")
	}
}
