package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuditRecorder,
		func(r *AuditRecorder) Auditor { return r },
		NewGuard,
		newMarketplaceOptions,
		NewAuthUseCase,
		NewMarketplaceUseCase,
		NewOrderUseCase,
		NewProviderUseCase,
		NewPayoutUseCase,
		NewPaymentUseCase,
		NewAuditUseCase,
	),
)

func newMarketplaceOptions(cfg *config.Config) MarketplaceOptions {
	return MarketplaceOptions{OfferTTL: cfg.OfferTTL}
}
