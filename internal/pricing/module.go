package pricing

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/autotransit/internal/config"
)

// Module provides the configured pricing policy.
var Module = fx.Provide(newPolicy)

type policyParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPolicy(p policyParams) (Policy, error) {
	policy := Policy{
		InsuranceRate:  p.Config.InsuranceRate,
		Commission:     CommissionKind(p.Config.CommissionPolicy),
		CommissionFlat: p.Config.CommissionFlat,
		CommissionRate: p.Config.CommissionRate,
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	p.Logger.Info("pricing policy configured", slog.String("policy", policy.String()))
	return policy, nil
}
