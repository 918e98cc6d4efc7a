package types

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderSettled   OrderStatus = "SETTLED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderExpired   OrderStatus = "EXPIRED"
)

// Order is a pending request to open, grow or reduce a position. The
// pricing fields are pointers: an order indexed before all of its fields
// resolved is "not yet settleable", never an error, so absence has to be
// distinguishable from zero.
type Order struct {
	ID         string
	Market     *Market
	Account    string
	PositionID string

	IsLimitOrder  *bool
	TriggerAbove  *bool
	IsLong        *bool
	ExpectedPrice *decimal.Decimal
	MaxSlippage   *decimal.Decimal

	DeltaCollateral decimal.Decimal
	DeltaSize       decimal.Decimal

	Deadline         int64
	Status           OrderStatus
	CreatedTimestamp int64
}

// PriceFeedID returns the oracle feed id of the order's market, without
// the 0x prefix. Empty when the market reference is unresolved.
func (o *Order) PriceFeedID() string {
	if o == nil || o.Market == nil {
		return ""
	}
	return FeedID(o.Market.PythID)
}
