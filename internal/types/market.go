package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Token is a collateral asset accepted by a market's vault.
type Token struct {
	Address  string
	Symbol   string
	Decimals int32
	PythID   string
}

// Market is a tradable instrument backed by a vault. Monetary fields are
// fixed-point decimals in the market's native units; decimal counts are
// non-negative. Values arrive from the indexer already validated and
// zero-defaulted, so the math layers never see absent fields.
type Market struct {
	ID             string
	IsLive         bool
	MarketDecimals int32
	PythID         string
	DepositToken   *Token

	LiquidationThreshold decimal.Decimal
	LiquidationFee       decimal.Decimal
	ClosingFee           decimal.Decimal
	OpeningFee           decimal.Decimal

	MaxOpenInterest decimal.Decimal
	TotalLongs      decimal.Decimal
	TotalShorts     decimal.Decimal

	// Cumulative borrow-fee indices, one pair per side. Monotonically
	// increasing; positions snapshot them on open/refresh.
	BaseFeeCumulativeLongs     decimal.Decimal
	BaseFeeCumulativeShorts    decimal.Decimal
	DynamicFeeCumulativeLongs  decimal.Decimal
	DynamicFeeCumulativeShorts decimal.Decimal

	// Deviation and borrow-rate curve coefficients.
	DeviationCoeff      decimal.Decimal
	DeviationConst      decimal.Decimal
	BaseCoeff           decimal.Decimal
	BaseConst           decimal.Decimal
	DynamicCoeff        decimal.Decimal
	MaxDynamicBorrowFee decimal.Decimal
}

// CollateralDecimals returns the deposit token's decimal count, zero when
// the token reference is unresolved.
func (m *Market) CollateralDecimals() int32 {
	if m == nil || m.DepositToken == nil {
		return 0
	}
	return m.DepositToken.Decimals
}

// CollateralPythID returns the deposit token's price-feed id, empty when
// the token reference is unresolved.
func (m *Market) CollateralPythID() string {
	if m == nil || m.DepositToken == nil {
		return ""
	}
	return m.DepositToken.PythID
}

// FeedID strips the 0x prefix used on-chain so feed ids compare equal to
// the ids the oracle service returns.
func FeedID(id string) string {
	return strings.TrimPrefix(id, "0x")
}
