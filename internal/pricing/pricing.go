// Package pricing splits a gross transport price into insurance, commission and
// driver payout.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
)

// CommissionKind selects how the system commission is computed.
type CommissionKind string

const (
	CommissionFlat    CommissionKind = "flat"
	CommissionPercent CommissionKind = "percent"
)

const currencyPlaces = 2

var (
	defaultInsuranceRate  = decimal.RequireFromString("0.15")
	defaultCommissionFlat = decimal.NewFromInt(100)
	defaultCommissionRate = decimal.RequireFromString("0.10")
)

// Policy is the system-wide pricing configuration.
type Policy struct {
	InsuranceRate  decimal.Decimal
	Commission     CommissionKind
	CommissionFlat decimal.Decimal
	CommissionRate decimal.Decimal
}

// DefaultPolicy returns 15% insurance with a flat EUR 100 commission.
func DefaultPolicy() Policy {
	return Policy{
		InsuranceRate:  defaultInsuranceRate,
		Commission:     CommissionFlat,
		CommissionFlat: defaultCommissionFlat,
		CommissionRate: defaultCommissionRate,
	}
}

// Validate checks rates are fractions and the commission kind is known.
func (p Policy) Validate() error {
	one := decimal.NewFromInt(1)
	if p.InsuranceRate.IsNegative() || p.InsuranceRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("insurance rate must be in [0, 1), got %s", p.InsuranceRate)
	}
	switch p.Commission {
	case CommissionFlat:
		if p.CommissionFlat.IsNegative() {
			return fmt.Errorf("flat commission must not be negative, got %s", p.CommissionFlat)
		}
	case CommissionPercent:
		if p.CommissionRate.IsNegative() || p.InsuranceRate.Add(p.CommissionRate).GreaterThanOrEqual(one) {
			return fmt.Errorf("commission rate must be in [0, 1-insurance), got %s", p.CommissionRate)
		}
	default:
		return fmt.Errorf("unknown commission policy %q", p.Commission)
	}
	return nil
}

// String describes the policy for start-up logs.
func (p Policy) String() string {
	if p.Commission == CommissionPercent {
		return fmt.Sprintf("insurance=%s commission=percent(%s)", p.InsuranceRate, p.CommissionRate)
	}
	return fmt.Sprintf("insurance=%s commission=flat(%s)", p.InsuranceRate, p.CommissionFlat.StringFixed(currencyPlaces))
}

// Split computes the three-way division of gross. Insurance and commission are
// rounded to cents with banker's rounding and the payout takes the remainder, so
// the parts always sum to the rounded gross.
func (p Policy) Split(gross decimal.Decimal) (model.PriceSplit, error) {
	if !gross.IsPositive() {
		return model.PriceSplit{}, domainErrors.ErrInvalidPrice
	}
	total := gross.RoundBank(currencyPlaces)
	if !total.IsPositive() {
		return model.PriceSplit{}, domainErrors.ErrInvalidPrice
	}

	insurance := total.Mul(p.InsuranceRate).RoundBank(currencyPlaces)

	var commission decimal.Decimal
	switch p.Commission {
	case CommissionPercent:
		commission = total.Mul(p.CommissionRate).RoundBank(currencyPlaces)
	default:
		commission = p.CommissionFlat.RoundBank(currencyPlaces)
	}

	payout := total.Sub(insurance).Sub(commission)
	if payout.IsNegative() {
		return model.PriceSplit{}, domainErrors.ErrPriceBelowFees
	}

	return model.PriceSplit{
		Total:      total,
		Insurance:  insurance,
		Commission: commission,
		Payout:     payout,
	}, nil
}
