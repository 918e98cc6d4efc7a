package types

import "github.com/shopspring/decimal"

type PositionStatus string

const (
	PositionOpen       PositionStatus = "OPEN"
	PositionClosed     PositionStatus = "CLOSED"
	PositionLiquidated PositionStatus = "LIQUIDATED"
)

// Position is a leveraged exposure held by one account in one market.
// LastCumulativeFee snapshots the market's cumulative fee index at the
// last open/refresh, which makes borrow-fee accrual exact regardless of
// how often the position is refreshed.
type Position struct {
	ID       string
	MarketID string
	Market   *Market
	Account  string
	IsLong   bool

	PositionCollateral decimal.Decimal
	PositionSize       decimal.Decimal
	AvgPrice           decimal.Decimal
	LastCumulativeFee  decimal.Decimal

	Status           PositionStatus
	CreatedTimestamp int64
	LastRefresh      int64
}
