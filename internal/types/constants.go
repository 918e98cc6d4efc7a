package types

import "github.com/shopspring/decimal"

// PriceFeedDecimals is the canonical decimal scale for normalized prices.
// Every oracle feed is rescaled to this before any protocol math runs.
const PriceFeedDecimals = 8

var (
	// PrecisionMultiplier is the protocol's general fixed-point scale:
	// utilization, skew, slippage, leverage and liquidation thresholds all
	// carry four decimals of precision (10000 == 1.0 / 100%).
	PrecisionMultiplier = decimal.New(1, 4)

	// DeviationPrecisionMultiplier scales the deviation-curve coefficients.
	DeviationPrecisionMultiplier = decimal.New(1, 12)

	// MaxFee is the denominator for configured fee fractions
	// (liquidationFee, closingFee, openingFee).
	MaxFee = decimal.New(1, 7)

	// SecondsInAYear converts annualized borrow rates to per-second rates.
	SecondsInAYear = decimal.NewFromInt(31536000)

	// MaxLeverage is the sentinel returned when a position's losses consume
	// its collateral: 10000x at the precision scale.
	MaxLeverage = decimal.NewFromInt(10000).Mul(PrecisionMultiplier)
)
