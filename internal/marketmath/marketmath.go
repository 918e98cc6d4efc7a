// Package marketmath derives per-market quantities from indexed state:
// utilization, skew, borrow rates and accrued borrow fees.
package marketmath

import (
	"github.com/shopspring/decimal"

	"perpkeeper/internal/types"
)

// Utilization returns one side's share of the market's maximum open
// interest at the precision scale (8000 == 80%). The value is not clamped:
// open interest beyond the configured maximum pushes it past 10000 and the
// deviation/rate curves keep growing with it. An empty market reports zero.
func Utilization(m *types.Market, isLong bool) decimal.Decimal {
	if m.MaxOpenInterest.IsZero() {
		return decimal.Zero
	}
	side := m.TotalShorts
	if isLong {
		side = m.TotalLongs
	}
	return side.Mul(types.PrecisionMultiplier).Div(m.MaxOpenInterest)
}

// Skew returns the signed long/short imbalance at the precision scale:
// +10000 when all open interest is long, -10000 when all short, zero for
// a balanced or empty market.
func Skew(m *types.Market) decimal.Decimal {
	total := m.TotalLongs.Add(m.TotalShorts)
	if total.IsZero() {
		return decimal.Zero
	}
	return m.TotalLongs.Sub(m.TotalShorts).Mul(types.PrecisionMultiplier).Div(total)
}

// BaseBorrowRatePerSecond returns the per-second base borrow rates for
// longs and shorts. The over-weighted side pays the skew-scaled rate
// baseCoeff*skew^2/PRECISION + baseConst, the under-weighted side pays the
// configured floor baseConst. Rates are configured annualized.
func BaseBorrowRatePerSecond(m *types.Market) (longRate, shortRate decimal.Decimal) {
	skew := Skew(m)
	heavy := m.BaseCoeff.Mul(skew).Mul(skew).Div(types.PrecisionMultiplier).Add(m.BaseConst)
	light := m.BaseConst
	if skew.IsNegative() {
		heavy, light = light, heavy
	}
	return heavy.Div(types.SecondsInAYear), light.Div(types.SecondsInAYear)
}

// DynamicBorrowRatePerSecond returns the per-second rate both sides pay on
// top of the base rate. It scales linearly with the skew magnitude and is
// capped at the market's maxDynamicBorrowFee.
func DynamicBorrowRatePerSecond(m *types.Market) decimal.Decimal {
	rate := m.DynamicCoeff.Mul(Skew(m).Abs()).Div(types.PrecisionMultiplier)
	if rate.GreaterThan(m.MaxDynamicBorrowFee) {
		rate = m.MaxDynamicBorrowFee
	}
	return rate.Div(types.SecondsInAYear)
}

// AccruedBorrowFees returns the borrow fees a position has accrued since
// its last open/refresh, in market units. The fee is the difference
// between the market's current cumulative index for the position's side
// and the position's snapshot, scaled by position size. Being index-based
// it is exact regardless of refresh cadence.
func AccruedBorrowFees(p *types.Position, m *types.Market) decimal.Decimal {
	var cumulative decimal.Decimal
	if p.IsLong {
		cumulative = m.BaseFeeCumulativeLongs.Add(m.DynamicFeeCumulativeLongs)
	} else {
		cumulative = m.BaseFeeCumulativeShorts.Add(m.DynamicFeeCumulativeShorts)
	}
	return cumulative.Sub(p.LastCumulativeFee).Mul(p.PositionSize).Div(types.PrecisionMultiplier)
}
