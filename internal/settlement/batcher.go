package settlement

import (
	"perpkeeper/internal/logger"
	"perpkeeper/internal/pricefeed"
	"perpkeeper/internal/types"
)

// BatchEntry pairs a settleable order with the price-update payload. The
// payload is the full set of update blobs for the whole round and is
// shared verbatim by every entry in the batch.
type BatchEntry struct {
	OrderID         string
	PriceUpdateData []string
}

// BuildBatch evaluates each pending order against the latest quotes and
// returns the subset that can be settled together. Orders without a
// matching quote or with an unusable one are skipped and stay pending for
// the next round. Entries are independent, so evaluation order never
// changes the result set; an empty batch is a valid outcome.
func BuildBatch(orders []types.Order, quotes []types.PriceQuote, updateData []string) []BatchEntry {
	byFeed := make(map[string]types.PriceQuote, len(quotes))
	for _, q := range quotes {
		byFeed[q.ID] = q
	}

	var batch []BatchEntry
	for i := range orders {
		order := &orders[i]
		if order.ID == "" {
			continue
		}
		feedID := order.PriceFeedID()
		quote, ok := byFeed[feedID]
		if !ok {
			logger.Debugf("order %s: no quote for feed %s, skipping", order.ID, feedID)
			continue
		}
		price, err := pricefeed.NormalizePrice(quote.Price, quote.Expo)
		if err != nil {
			logger.Warnf("order %s: unusable quote for feed %s: %v", order.ID, feedID, err)
			continue
		}
		if !CanBeSettled(order, price) {
			logger.Debugf("order %s: price %s outside settlement range", order.ID, price)
			continue
		}
		batch = append(batch, BatchEntry{OrderID: order.ID, PriceUpdateData: updateData})
	}
	return batch
}
