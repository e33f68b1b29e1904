package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/config"
	"github.com/polkiloo/autotransit/internal/usecase"
)

// Module exposes the payment gateway implementation to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (usecase.PaymentGateway, error) {
	settings := Settings{
		Currency:      p.Config.PaymentCurrency,
		SuccessURL:    p.Config.CheckoutSuccessURL,
		CancelURL:     p.Config.CheckoutCancelURL,
		WebhookSecret: p.Config.StripeWebhookSecret,
	}
	if p.Config.StripeSecretKey == "" {
		p.Logger.Warn("stripe secret key not set, using dev payment gateway")
		return NewDevGateway(settings, p.Logger), nil
	}
	return NewStripeGateway(p.Config.StripeSecretKey, settings, p.Logger)
}
