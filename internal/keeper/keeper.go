// Package keeper runs the periodic decision loop: pull pending orders and
// open positions from the indexer, price them with fresh oracle quotes,
// and dispatch settlement batches and liquidations through the relay.
package keeper

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"perpkeeper/internal/logger"
	"perpkeeper/internal/pricefeed"
	"perpkeeper/internal/risk"
	"perpkeeper/internal/settlement"
	"perpkeeper/internal/store"
	"perpkeeper/internal/types"
)

type OracleClient interface {
	PriceUpdateData(ctx context.Context, ids []string) ([]string, error)
	LatestPrices(ctx context.Context, ids []string) ([]types.PriceQuote, error)
}

type IndexerClient interface {
	PendingOrders(ctx context.Context, asOf int64, limit int) ([]types.Order, error)
	OpenPositions(ctx context.Context, limit int) ([]types.Position, error)
}

type RelayerClient interface {
	SettleOrders(ctx context.Context, entries []settlement.BatchEntry) (string, error)
	LiquidatePosition(ctx context.Context, positionID string, updateData []string) (string, error)
}

type HistoryStore interface {
	RecordRound(kind store.Kind, taskID string, itemIDs []string) error
}

type Config struct {
	Interval  time.Duration
	BatchSize int

	// CollateralFeeds are always included in settlement update payloads so
	// the contracts can refresh vault pricing alongside market prices.
	CollateralFeeds []string
}

type Keeper struct {
	cfg     Config
	oracle  OracleClient
	indexer IndexerClient
	relayer RelayerClient
	history HistoryStore

	now func() time.Time
}

func New(cfg Config, oracle OracleClient, indexer IndexerClient, relayer RelayerClient, history HistoryStore) *Keeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Keeper{
		cfg:     cfg,
		oracle:  oracle,
		indexer: indexer,
		relayer: relayer,
		history: history,
		now:     time.Now,
	}
}

// Run executes rounds on the configured interval until ctx is cancelled.
// A failing round is logged and does not stop the loop.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.cfg.Interval)
	defer ticker.Stop()
	logger.Infof("keeper: running every %s, batch size %d", k.cfg.Interval, k.cfg.BatchSize)
	for {
		if err := k.SettleRound(ctx); err != nil {
			logger.Errorf("keeper: settlement round: %v", err)
		}
		if err := k.LiquidationSweep(ctx); err != nil {
			logger.Errorf("keeper: liquidation sweep: %v", err)
		}
		lastRoundTimestamp.Set(float64(k.now().Unix()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SettleRound fetches pending orders, prices them and dispatches a single
// batch-settlement task for the settleable ones. Orders that cannot settle
// right now are simply skipped and picked up on a later round.
func (k *Keeper) SettleRound(ctx context.Context) error {
	roundsTotal.WithLabelValues(string(store.KindSettlement)).Inc()

	orders, err := k.indexer.PendingOrders(ctx, k.now().Unix(), k.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	feedIDs := make([]string, 0, len(orders)+len(k.cfg.CollateralFeeds))
	for i := range orders {
		if id := orders[i].PriceFeedID(); id != "" {
			feedIDs = append(feedIDs, id)
		}
	}
	for _, id := range k.cfg.CollateralFeeds {
		feedIDs = append(feedIDs, types.FeedID(id))
	}
	if len(feedIDs) == 0 {
		return nil
	}

	var updateData []string
	var quotes []types.PriceQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		updateData, err = k.oracle.PriceUpdateData(gctx, feedIDs)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = k.oracle.LatestPrices(gctx, feedIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	entries := settlement.BuildBatch(orders, quotes, updateData)
	ordersSkippedTotal.Add(float64(len(orders) - len(entries)))
	if len(entries) == 0 {
		logger.Debugf("keeper: %d pending orders, none settleable", len(orders))
		return nil
	}

	taskID, err := k.relayer.SettleOrders(ctx, entries)
	if err != nil {
		dispatchFailuresTotal.WithLabelValues(string(store.KindSettlement)).Inc()
		return err
	}
	ordersSettledTotal.Add(float64(len(entries)))

	orderIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		orderIDs = append(orderIDs, e.OrderID)
	}
	if err := k.history.RecordRound(store.KindSettlement, taskID, orderIDs); err != nil {
		logger.Warnf("keeper: recording settlement round: %v", err)
	}
	logger.Infof("keeper: settled %d/%d orders, task %s", len(entries), len(orders), taskID)
	return nil
}

// LiquidationSweep checks every open position against the liquidation
// threshold at current prices and dispatches a liquidation task for each
// one past it.
func (k *Keeper) LiquidationSweep(ctx context.Context) error {
	roundsTotal.WithLabelValues(string(store.KindLiquidation)).Inc()

	positions, err := k.indexer.OpenPositions(ctx, k.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	feedIDs := make([]string, 0, 2*len(positions))
	for i := range positions {
		m := positions[i].Market
		if m == nil {
			continue
		}
		feedIDs = append(feedIDs, types.FeedID(m.PythID), types.FeedID(m.CollateralPythID()))
	}
	quotes, err := k.oracle.LatestPrices(ctx, feedIDs)
	if err != nil {
		return err
	}
	quoteByID := make(map[string]types.PriceQuote, len(quotes))
	for _, q := range quotes {
		quoteByID[q.ID] = q
	}

	for i := range positions {
		p := &positions[i]
		if err := k.maybeLiquidate(ctx, p, quoteByID); err != nil {
			logger.Warnf("keeper: position %s: %v", p.ID, err)
		}
	}
	return nil
}

func (k *Keeper) maybeLiquidate(ctx context.Context, p *types.Position, quoteByID map[string]types.PriceQuote) error {
	m := p.Market
	if m == nil || m.DepositToken == nil {
		logger.Debugf("keeper: position %s has unresolved market, skipping", p.ID)
		return nil
	}
	marketFeed := types.FeedID(m.PythID)
	collateralFeed := types.FeedID(m.CollateralPythID())
	marketQuote, ok := quoteByID[marketFeed]
	if !ok {
		logger.Debugf("keeper: no quote for market feed %s, skipping position %s", marketFeed, p.ID)
		return nil
	}
	collateralQuote, ok := quoteByID[collateralFeed]
	if !ok {
		logger.Debugf("keeper: no quote for collateral feed %s, skipping position %s", collateralFeed, p.ID)
		return nil
	}

	marketPrice, err := pricefeed.NormalizePrice(marketQuote.Price, marketQuote.Expo)
	if err != nil {
		return err
	}
	collateralPrice, err := pricefeed.NormalizePrice(collateralQuote.Price, collateralQuote.Expo)
	if err != nil {
		return err
	}

	liquidatable, err := risk.IsPositionLiquidatable(p, m, marketPrice, collateralPrice)
	if err != nil || !liquidatable {
		return err
	}

	updateData, err := k.oracle.PriceUpdateData(ctx, []string{marketFeed, collateralFeed})
	if err != nil {
		return err
	}
	taskID, err := k.relayer.LiquidatePosition(ctx, p.ID, updateData)
	if err != nil {
		dispatchFailuresTotal.WithLabelValues(string(store.KindLiquidation)).Inc()
		return err
	}
	liquidationsTotal.Inc()
	if err := k.history.RecordRound(store.KindLiquidation, taskID, []string{p.ID}); err != nil {
		logger.Warnf("keeper: recording liquidation: %v", err)
	}
	logger.Infof("keeper: liquidating position %s, task %s", p.ID, taskID)
	return nil
}
