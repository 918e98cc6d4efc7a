package subgraph

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"perpkeeper/internal/types"
)

// dec parses an indexer numeric string, defaulting absent or malformed
// values to zero so downstream math never sees garbage.
func dec(r gjson.Result) decimal.Decimal {
	if !r.Exists() || r.Type == gjson.Null {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// decPtr is like dec but keeps absence visible, for fields where a missing
// value must block settlement rather than behave as zero.
func decPtr(r gjson.Result) *decimal.Decimal {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	d, err := decimal.NewFromString(r.String())
	if err != nil {
		return nil
	}
	return &d
}

func boolPtr(r gjson.Result) *bool {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	b := r.Bool()
	return &b
}

func parseToken(raw gjson.Result) *types.Token {
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil
	}
	return &types.Token{
		Address:  raw.Get("id").String(),
		Symbol:   raw.Get("symbol").String(),
		Decimals: int32(raw.Get("decimals").Int()),
		PythID:   raw.Get("pyth.id").String(),
	}
}

func parseMarket(raw gjson.Result) *types.Market {
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil
	}
	return &types.Market{
		ID:             raw.Get("id").String(),
		IsLive:         raw.Get("isLive").Bool(),
		MarketDecimals: int32(raw.Get("marketDecimals").Int()),
		PythID:         raw.Get("pyth.id").String(),
		DepositToken:   parseToken(raw.Get("depositToken")),

		LiquidationThreshold: dec(raw.Get("liquidationThreshold")),
		LiquidationFee:       dec(raw.Get("liquidationFee")),
		ClosingFee:           dec(raw.Get("closingFee")),
		OpeningFee:           dec(raw.Get("openingFee")),

		MaxOpenInterest: dec(raw.Get("maxOpenInterest")),
		TotalLongs:      dec(raw.Get("totalLongs")),
		TotalShorts:     dec(raw.Get("totalShorts")),

		BaseFeeCumulativeLongs:     dec(raw.Get("baseFeeCumulativeLongs")),
		BaseFeeCumulativeShorts:    dec(raw.Get("baseFeeCumulativeShorts")),
		DynamicFeeCumulativeLongs:  dec(raw.Get("dynamicFeeCumulativeLongs")),
		DynamicFeeCumulativeShorts: dec(raw.Get("dynamicFeeCumulativeShorts")),

		DeviationCoeff:      dec(raw.Get("deviationCoeff")),
		DeviationConst:      dec(raw.Get("deviationConst")),
		BaseCoeff:           dec(raw.Get("baseCoeff")),
		BaseConst:           dec(raw.Get("baseConst")),
		DynamicCoeff:        dec(raw.Get("dynamicCoeff")),
		MaxDynamicBorrowFee: dec(raw.Get("maxDynamicBorrowFee")),
	}
}

func parseOrder(raw gjson.Result) types.Order {
	return types.Order{
		ID:         raw.Get("id").String(),
		Market:     parseMarket(raw.Get("market")),
		Account:    raw.Get("user.id").String(),
		PositionID: raw.Get("position.id").String(),

		IsLimitOrder:  boolPtr(raw.Get("isLimitOrder")),
		TriggerAbove:  boolPtr(raw.Get("triggerAbove")),
		IsLong:        boolPtr(raw.Get("isLong")),
		ExpectedPrice: decPtr(raw.Get("expectedPrice")),
		MaxSlippage:   decPtr(raw.Get("maxSlippage")),

		DeltaCollateral: dec(raw.Get("deltaCollateral")),
		DeltaSize:       dec(raw.Get("deltaSize")),

		Deadline:         raw.Get("deadline").Int(),
		Status:           types.OrderStatus(raw.Get("status").String()),
		CreatedTimestamp: raw.Get("createdTimestamp").Int(),
	}
}

func parsePosition(raw gjson.Result) types.Position {
	market := parseMarket(raw.Get("market"))
	marketID := ""
	if market != nil {
		marketID = market.ID
	}
	return types.Position{
		ID:       raw.Get("id").String(),
		MarketID: marketID,
		Market:   market,
		Account:  raw.Get("user.id").String(),
		IsLong:   raw.Get("isLong").Bool(),

		PositionCollateral: dec(raw.Get("positionCollateralAmount")),
		PositionSize:       dec(raw.Get("positionSize")),
		AvgPrice:           dec(raw.Get("avgPrice")),
		LastCumulativeFee:  dec(raw.Get("lastCumulativeFee")),

		Status:           types.PositionStatus(raw.Get("status").String()),
		CreatedTimestamp: raw.Get("createdTimestamp").Int(),
		LastRefresh:      raw.Get("lastRefresh").Int(),
	}
}
