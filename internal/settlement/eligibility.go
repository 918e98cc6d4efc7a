// Package settlement decides which pending orders may execute at the
// current oracle prices and assembles them into a dispatchable batch.
package settlement

import (
	"github.com/shopspring/decimal"

	"perpkeeper/internal/types"
)

// CanBeSettled reports whether the normalized market price satisfies the
// order's trigger or slippage constraints. An order with unresolved
// fields is simply not settleable yet; that is a normal state, never an
// error.
func CanBeSettled(o *types.Order, marketPrice decimal.Decimal) bool {
	if o == nil || o.IsLimitOrder == nil || o.TriggerAbove == nil || o.IsLong == nil {
		return false
	}
	if o.ExpectedPrice == nil || o.MaxSlippage == nil {
		return false
	}
	expected := *o.ExpectedPrice

	if *o.IsLimitOrder {
		// Limit orders wait for the trigger price, from above or below.
		if *o.TriggerAbove {
			return !marketPrice.LessThan(expected)
		}
		return !marketPrice.GreaterThan(expected)
	}

	// Market orders execute unless the price slipped out of the band the
	// trader allowed. No expected price means no band to enforce.
	if expected.IsZero() {
		return true
	}
	slippage := *o.MaxSlippage
	upper := expected.Mul(types.PrecisionMultiplier.Add(slippage)).Div(types.PrecisionMultiplier)
	lower := expected.Mul(types.PrecisionMultiplier.Sub(slippage)).Div(types.PrecisionMultiplier)
	if *o.IsLong && marketPrice.GreaterThan(upper) {
		return false
	}
	if !*o.IsLong && marketPrice.LessThan(lower) {
		return false
	}
	return true
}
