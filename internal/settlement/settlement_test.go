package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpkeeper/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func marketOrder(isLong bool, expectedPrice, maxSlippage string) *types.Order {
	return &types.Order{
		ID:            "order-1",
		IsLimitOrder:  boolPtr(false),
		TriggerAbove:  boolPtr(false),
		IsLong:        boolPtr(isLong),
		ExpectedPrice: decPtr(expectedPrice),
		MaxSlippage:   decPtr(maxSlippage),
	}
}

func limitOrder(triggerAbove bool, expectedPrice string) *types.Order {
	return &types.Order{
		ID:            "order-1",
		IsLimitOrder:  boolPtr(true),
		TriggerAbove:  boolPtr(triggerAbove),
		IsLong:        boolPtr(true),
		ExpectedPrice: decPtr(expectedPrice),
		MaxSlippage:   decPtr("0"),
	}
}

func TestCanBeSettledMarketOrders(t *testing.T) {
	// Long at 100 USD expected, 1% slippage: anything up to 101 is fine.
	cases := []struct {
		name  string
		price string
		want  bool
	}{
		{"below expected", "9900000000", true},
		{"at expected", "10000000000", true},
		{"at the upper band", "10100000000", true},
		{"one unit past the band", "10100000001", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := marketOrder(true, "10000000000", "100")
			assert.Equal(t, tc.want, CanBeSettled(o, dec(tc.price)))
		})
	}

	t.Run("short checks the lower band", func(t *testing.T) {
		o := marketOrder(false, "10000000000", "100")
		assert.True(t, CanBeSettled(o, dec("9900000000")))
		assert.False(t, CanBeSettled(o, dec("9899999999")))
		assert.True(t, CanBeSettled(o, dec("10500000000")))
	})

	t.Run("zero expected price skips the slippage check", func(t *testing.T) {
		o := marketOrder(true, "0", "100")
		assert.True(t, CanBeSettled(o, dec("99999000000000")))
	})
}

func TestCanBeSettledLimitOrders(t *testing.T) {
	t.Run("trigger above", func(t *testing.T) {
		o := limitOrder(true, "10000000000")
		assert.False(t, CanBeSettled(o, dec("9999999999")))
		assert.True(t, CanBeSettled(o, dec("10000000000")))
		assert.True(t, CanBeSettled(o, dec("10000000001")))
	})

	t.Run("trigger below", func(t *testing.T) {
		o := limitOrder(false, "10000000000")
		assert.True(t, CanBeSettled(o, dec("9999999999")))
		assert.True(t, CanBeSettled(o, dec("10000000000")))
		assert.False(t, CanBeSettled(o, dec("10000000001")))
	})
}

func TestCanBeSettledMissingFields(t *testing.T) {
	price := dec("10000000000")

	assert.False(t, CanBeSettled(nil, price))

	o := marketOrder(true, "10000000000", "100")
	o.IsLimitOrder = nil
	assert.False(t, CanBeSettled(o, price))

	o = marketOrder(true, "10000000000", "100")
	o.TriggerAbove = nil
	assert.False(t, CanBeSettled(o, price))

	o = marketOrder(true, "10000000000", "100")
	o.IsLong = nil
	assert.False(t, CanBeSettled(o, price))

	o = marketOrder(true, "10000000000", "100")
	o.ExpectedPrice = nil
	assert.False(t, CanBeSettled(o, price))

	o = marketOrder(true, "10000000000", "100")
	o.MaxSlippage = nil
	assert.False(t, CanBeSettled(o, price))
}

func TestBuildBatch(t *testing.T) {
	ethFeed := "ff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace"
	btcFeed := "e62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43"

	eligible := *limitOrder(false, "10000000000")
	eligible.ID = "order-eth"
	eligible.Market = &types.Market{ID: "0xeth", PythID: "0x" + ethFeed}

	noQuote := *limitOrder(false, "10000000000")
	noQuote.ID = "order-btc"
	noQuote.Market = &types.Market{ID: "0xbtc", PythID: "0x" + btcFeed}

	quotes := []types.PriceQuote{
		{ID: ethFeed, Price: 9_950_000_000, Expo: -8},
	}
	updateData := []string{"0xdeadbeef", "0xfeedface"}

	t.Run("skips orders without a quote, keeps the rest", func(t *testing.T) {
		batch := BuildBatch([]types.Order{noQuote, eligible}, quotes, updateData)
		require.Len(t, batch, 1)
		assert.Equal(t, "order-eth", batch[0].OrderID)
		assert.Equal(t, updateData, batch[0].PriceUpdateData)
	})

	t.Run("drops orders whose price is out of range", func(t *testing.T) {
		away := eligible
		away.ExpectedPrice = decPtr("9000000000") // trigger-below not reached
		batch := BuildBatch([]types.Order{away}, quotes, updateData)
		assert.Empty(t, batch)
	})

	t.Run("skips orders with a negative raw quote", func(t *testing.T) {
		bad := []types.PriceQuote{{ID: ethFeed, Price: -1, Expo: -8}}
		batch := BuildBatch([]types.Order{eligible}, bad, updateData)
		assert.Empty(t, batch)
	})

	t.Run("empty input produces an empty batch", func(t *testing.T) {
		assert.Empty(t, BuildBatch(nil, quotes, updateData))
	})
}
