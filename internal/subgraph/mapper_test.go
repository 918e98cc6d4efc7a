package subgraph

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"perpkeeper/internal/types"
)

const orderFixture = `{
	"id": "order-1",
	"user": {"id": "0xabc"},
	"position": {"id": "pos-1"},
	"isLimitOrder": true,
	"triggerAbove": false,
	"isLong": true,
	"expectedPrice": "10000000000",
	"maxSlippage": "100",
	"deltaCollateral": "50000000",
	"deltaSize": "1000000",
	"deadline": "1700000500",
	"status": "PENDING",
	"createdTimestamp": "1700000000",
	"market": {
		"id": "market-eth",
		"isLive": true,
		"marketDecimals": 18,
		"pyth": {"id": "0xfeedeth"},
		"depositToken": {"id": "0xusdc", "symbol": "USDC", "decimals": 6, "pyth": {"id": "0xfeedusdc"}},
		"liquidationThreshold": "8000",
		"liquidationFee": "1500000",
		"closingFee": "500000",
		"openingFee": "800000",
		"maxOpenInterest": "1000000000",
		"totalLongs": "800000000",
		"totalShorts": "200000000",
		"baseFeeCumulativeLongs": "123",
		"baseFeeCumulativeShorts": "456",
		"dynamicFeeCumulativeLongs": "789",
		"dynamicFeeCumulativeShorts": "12",
		"deviationCoeff": "10000",
		"deviationConst": "10000000000",
		"baseCoeff": "2",
		"baseConst": "1000",
		"dynamicCoeff": "5000",
		"maxDynamicBorrowFee": "2000"
	}
}`

func TestParseOrder(t *testing.T) {
	order := parseOrder(gjson.Parse(orderFixture))

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "0xabc", order.Account)
	assert.Equal(t, "pos-1", order.PositionID)
	assert.Equal(t, types.OrderPending, order.Status)
	assert.Equal(t, int64(1700000500), order.Deadline)

	require.NotNil(t, order.IsLimitOrder)
	assert.True(t, *order.IsLimitOrder)
	require.NotNil(t, order.TriggerAbove)
	assert.False(t, *order.TriggerAbove)
	require.NotNil(t, order.IsLong)
	assert.True(t, *order.IsLong)
	require.NotNil(t, order.ExpectedPrice)
	assert.True(t, order.ExpectedPrice.Equal(decimal.NewFromInt(10_000_000_000)))
	require.NotNil(t, order.MaxSlippage)
	assert.True(t, order.MaxSlippage.Equal(decimal.NewFromInt(100)))

	require.NotNil(t, order.Market)
	assert.Equal(t, "market-eth", order.Market.ID)
	assert.Equal(t, int32(18), order.Market.MarketDecimals)
	assert.Equal(t, "0xfeedeth", order.Market.PythID)
	assert.Equal(t, "feedeth", order.PriceFeedID())
	assert.Equal(t, int32(6), order.Market.CollateralDecimals())
	assert.True(t, order.Market.TotalLongs.Equal(decimal.NewFromInt(800_000_000)))
}

func TestParseOrderMissingFields(t *testing.T) {
	order := parseOrder(gjson.Parse(`{"id": "order-2", "status": "PENDING"}`))

	assert.Equal(t, "order-2", order.ID)
	assert.Nil(t, order.IsLimitOrder)
	assert.Nil(t, order.TriggerAbove)
	assert.Nil(t, order.IsLong)
	assert.Nil(t, order.ExpectedPrice)
	assert.Nil(t, order.MaxSlippage)
	assert.Nil(t, order.Market)
	assert.Equal(t, "", order.PriceFeedID())
	// absent amounts default to zero, not error
	assert.True(t, order.DeltaSize.IsZero())
}

func TestParsePosition(t *testing.T) {
	raw := gjson.Parse(`{
		"id": "pos-1",
		"user": {"id": "0xdef"},
		"isLong": false,
		"positionCollateralAmount": "100000000",
		"positionSize": "1000000",
		"avgPrice": "10000000000",
		"lastCumulativeFee": "3000000",
		"status": "OPEN",
		"createdTimestamp": "1690000000",
		"lastRefresh": "1699999999",
		"market": {"id": "market-eth", "marketDecimals": 6}
	}`)
	position := parsePosition(raw)

	assert.Equal(t, "pos-1", position.ID)
	assert.Equal(t, "market-eth", position.MarketID)
	assert.Equal(t, "0xdef", position.Account)
	assert.False(t, position.IsLong)
	assert.Equal(t, types.PositionOpen, position.Status)
	assert.True(t, position.PositionCollateral.Equal(decimal.NewFromInt(100_000_000)))
	assert.True(t, position.LastCumulativeFee.Equal(decimal.NewFromInt(3_000_000)))
	assert.Equal(t, int64(1699999999), position.LastRefresh)
}

func TestDecMalformedDefaultsToZero(t *testing.T) {
	assert.True(t, dec(gjson.Parse(`{"v":"not-a-number"}`).Get("v")).IsZero())
	assert.Nil(t, decPtr(gjson.Parse(`{"v":"not-a-number"}`).Get("v")))
}

func TestPendingOrdersQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = gjson.GetBytes(body, "query").String()
		w.Write([]byte(`{"data":{"orders":[` + orderFixture + `]}}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 0, srv.Client())
	require.NoError(t, err)

	orders, err := client.PendingOrders(context.Background(), 1700000000, 25)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
	assert.Contains(t, gotQuery, "first: 25")
	assert.Contains(t, gotQuery, `deadline_gt: "1700000000"`)
}

func TestQueryErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"field not found"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 0, srv.Client())
	require.NoError(t, err)

	_, err = client.OpenPositions(context.Background(), 10)
	assert.ErrorContains(t, err, "field not found")
}
