// Package risk computes the transition-readiness signals for positions:
// profit and loss, leverage, liquidation eligibility and the
// deviation-adjusted execution price. Everything here is a pure function
// of its inputs; state changes happen on-chain, not in this process.
package risk

import (
	"github.com/shopspring/decimal"

	"perpkeeper/internal/marketmath"
	"perpkeeper/internal/pricefeed"
	"perpkeeper/internal/types"
)

// Pnl carries an unsigned amount together with its direction. Keeping the
// magnitude and the flag separate mirrors how the settlement contracts
// account for wins and losses.
type Pnl struct {
	Amount   decimal.Decimal
	IsProfit bool
}

// ProfitOrLossInUsd returns the position's gross PnL in USD at the given
// normalized market price. A long profits when the price rose above its
// average entry price, a short when it fell; an unchanged price counts as
// a zero-amount loss for longs and a zero-amount profit for shorts.
func ProfitOrLossInUsd(p *types.Position, marketPrice decimal.Decimal, marketDecimals int32) Pnl {
	var amount decimal.Decimal
	var isProfit bool
	if p.IsLong {
		if marketPrice.GreaterThan(p.AvgPrice) {
			amount = marketPrice.Sub(p.AvgPrice)
			isProfit = true
		} else {
			amount = p.AvgPrice.Sub(marketPrice)
		}
	} else {
		if marketPrice.GreaterThan(p.AvgPrice) {
			amount = marketPrice.Sub(p.AvgPrice)
		} else {
			amount = p.AvgPrice.Sub(marketPrice)
			isProfit = true
		}
	}
	total := p.PositionSize.Mul(amount).Div(decimal.New(1, marketDecimals))
	return Pnl{Amount: total, IsProfit: isProfit}
}

// PnlWithoutFeesInCollateral converts the gross USD PnL into collateral
// units. The division rounds up so an owed amount is never understated.
func PnlWithoutFeesInCollateral(p *types.Position, m *types.Market, marketPrice, collateralPrice decimal.Decimal) (Pnl, error) {
	if collateralPrice.IsZero() {
		return Pnl{}, pricefeed.ErrDivisionByZero
	}
	pnl := ProfitOrLossInUsd(p, marketPrice, m.MarketDecimals)
	amount := pnl.Amount.Mul(decimal.New(1, m.CollateralDecimals())).Div(collateralPrice).Ceil()
	return Pnl{Amount: amount, IsProfit: pnl.IsProfit}, nil
}

// NetProfitOrLossInCollateral subtracts the position's accrued borrow fees
// from its gross PnL. Fees larger than a gross profit flip the position
// into a net loss of fees minus profit.
func NetProfitOrLossInCollateral(p *types.Position, m *types.Market, marketPrice, collateralPrice decimal.Decimal) (Pnl, error) {
	gross, err := PnlWithoutFeesInCollateral(p, m, marketPrice, collateralPrice)
	if err != nil {
		return Pnl{}, err
	}
	fees := marketmath.AccruedBorrowFees(p, m)
	feesInCollateral, err := pricefeed.MarketAmountToCollateral(
		fees, m.MarketDecimals, m.CollateralDecimals(), marketPrice, collateralPrice)
	if err != nil {
		return Pnl{}, err
	}
	if gross.IsProfit {
		if feesInCollateral.LessThan(gross.Amount) {
			return Pnl{Amount: gross.Amount.Sub(feesInCollateral), IsProfit: true}, nil
		}
		return Pnl{Amount: feesInCollateral.Sub(gross.Amount)}, nil
	}
	return Pnl{Amount: gross.Amount.Add(feesInCollateral)}, nil
}

// DeviatedMarketPriceInUsd adjusts the oracle price along the market's
// liquidity curve: deviation points grow with the square of utilization.
// Opening or growing a long and closing or shrinking a short execute at
// the increased price (ceiling); the opposite pairings execute at the
// reduced price (floor). Traders always receive the unfavorable side.
func DeviatedMarketPriceInUsd(m *types.Market, marketPrice decimal.Decimal, isLong, isIncrease bool) decimal.Decimal {
	util := marketmath.Utilization(m, isLong)
	points := m.DeviationCoeff.Mul(util).Mul(util).Add(m.DeviationConst)
	precision := types.DeviationPrecisionMultiplier.Mul(decimal.NewFromInt(100))

	increased := marketPrice.Mul(precision.Add(points)).Div(precision).Ceil()
	reduced := marketPrice.Mul(precision.Sub(points)).Div(precision).Floor()

	if isIncrease == isLong {
		return increased
	}
	return reduced
}

// PositionLeverage returns the position's current leverage at the
// precision scale, rounded up: size in collateral terms over PnL-adjusted
// collateral. When the net loss consumes the whole collateral the
// division is skipped and the MaxLeverage sentinel is returned.
func PositionLeverage(p *types.Position, m *types.Market, marketPrice, collateralPrice decimal.Decimal) (decimal.Decimal, error) {
	sizeInCollateral, err := pricefeed.MarketAmountToCollateral(
		p.PositionSize, m.MarketDecimals, m.CollateralDecimals(), marketPrice, collateralPrice)
	if err != nil {
		return decimal.Zero, err
	}
	net, err := NetProfitOrLossInCollateral(p, m, marketPrice, collateralPrice)
	if err != nil {
		return decimal.Zero, err
	}
	adjusted := p.PositionCollateral.Sub(net.Amount)
	if net.IsProfit {
		adjusted = p.PositionCollateral.Add(net.Amount)
	}
	if !adjusted.IsPositive() {
		return types.MaxLeverage, nil
	}
	return sizeInCollateral.Mul(types.PrecisionMultiplier).Div(adjusted).Ceil(), nil
}

// IsPositionLiquidatable reports whether losses plus fees exceed the
// market's liquidation threshold on the position's collateral. The
// comparison is strict: a loss exactly at the threshold keeps the
// position alive.
func IsPositionLiquidatable(p *types.Position, m *types.Market, marketPrice, collateralPrice decimal.Decimal) (bool, error) {
	pnl, err := PnlWithoutFeesInCollateral(p, m, marketPrice, collateralPrice)
	if err != nil {
		return false, err
	}

	// Fixed fees charged on liquidation: the closing fee plus the
	// liquidation fee, both fractions of position size.
	fixedFees := m.LiquidationFee.Add(m.ClosingFee).Mul(p.PositionSize).Div(types.MaxFee)
	totalFees := fixedFees.Add(marketmath.AccruedBorrowFees(p, m))
	feesInCollateral, err := pricefeed.MarketAmountToCollateral(
		totalFees, m.MarketDecimals, m.CollateralDecimals(), marketPrice, collateralPrice)
	if err != nil {
		return false, err
	}

	var loss decimal.Decimal
	if pnl.IsProfit {
		if feesInCollateral.LessThan(pnl.Amount) {
			return false, nil
		}
		loss = feesInCollateral.Sub(pnl.Amount)
	} else {
		loss = pnl.Amount.Add(feesInCollateral)
	}

	threshold := m.LiquidationThreshold.Mul(p.PositionCollateral).Div(types.PrecisionMultiplier)
	return loss.GreaterThan(threshold), nil
}
