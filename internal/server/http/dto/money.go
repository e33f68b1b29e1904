package dto

import "github.com/shopspring/decimal"

// Money renders currency amounts with two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := Money(*d)
	return &s
}
