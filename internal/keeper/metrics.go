package keeper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perpkeeper",
		Name:      "rounds_total",
		Help:      "Keeper rounds executed, by kind.",
	}, []string{"kind"})

	ordersSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "perpkeeper",
		Name:      "orders_settled_total",
		Help:      "Orders included in dispatched settlement batches.",
	})

	ordersSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "perpkeeper",
		Name:      "orders_skipped_total",
		Help:      "Pending orders excluded from batches as not settleable.",
	})

	liquidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "perpkeeper",
		Name:      "liquidations_total",
		Help:      "Liquidation tasks dispatched.",
	})

	dispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perpkeeper",
		Name:      "dispatch_failures_total",
		Help:      "Relay dispatch failures, by kind.",
	}, []string{"kind"})

	lastRoundTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "perpkeeper",
		Name:      "last_round_timestamp_seconds",
		Help:      "Unix time of the last completed keeper round.",
	})
)
