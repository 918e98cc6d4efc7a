// Package pricefeed holds the fixed-point price plumbing shared by every
// other math layer: normalization of raw oracle quotes to the canonical
// 8-decimal scale, and conversions between market units, collateral units
// and USD.
package pricefeed

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"perpkeeper/internal/types"
)

var (
	ErrInvalidInput   = errors.New("pricefeed: invalid input")
	ErrDivisionByZero = errors.New("pricefeed: division by zero")
)

// NormalizePrice rescales a raw oracle price, encoded as raw*10^expo, to
// the protocol's 8-decimal representation. Scaling up is exact; scaling
// down divides with the decimal library's default precision. This is the
// only constructor for normalized prices.
func NormalizePrice(raw int64, expo int32) (decimal.Decimal, error) {
	if raw < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative raw price %d", ErrInvalidInput, raw)
	}
	price := decimal.NewFromInt(raw)
	shift := int32(types.PriceFeedDecimals) + expo
	if shift > 0 {
		return price.Mul(decimal.New(1, shift)), nil
	}
	return price.Div(decimal.New(1, -shift)), nil
}

// MarketAmountToUsd converts an amount in market units to USD at the
// normalized market price.
func MarketAmountToUsd(amount decimal.Decimal, marketDecimals int32, marketPrice decimal.Decimal) decimal.Decimal {
	return amount.Mul(marketPrice).Div(decimal.New(1, marketDecimals))
}

// CollateralAmountToUsd converts an amount in collateral-token units to
// USD at the normalized collateral price.
func CollateralAmountToUsd(amount decimal.Decimal, collateralDecimals int32, collateralPrice decimal.Decimal) decimal.Decimal {
	return amount.Mul(collateralPrice).Div(decimal.New(1, collateralDecimals))
}

// MarketAmountToCollateral converts an amount in market units into
// collateral-token units via USD. The numerator is assembled in full
// before the single final division, so no precision is lost along the
// way. Callers must guard against a zero collateral price.
func MarketAmountToCollateral(amount decimal.Decimal, marketDecimals, collateralDecimals int32, marketPrice, collateralPrice decimal.Decimal) (decimal.Decimal, error) {
	if collateralPrice.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: collateral price", ErrDivisionByZero)
	}
	num := amount.Mul(marketPrice).Mul(decimal.New(1, collateralDecimals))
	den := decimal.New(1, marketDecimals).Mul(collateralPrice)
	return num.Div(den), nil
}
