// ABOUTME: Prometheus metrics for the history coordinator.
// ABOUTME: Counts mutations, orphaned order entries and store/memory divergence.
package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liftlog_history_mutations_total",
		Help: "History coordinator operations by op and result",
	}, []string{"op", "result"})

	historyItemsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "liftlog_history_items",
		Help: "Current number of items in the combined history",
	})

	persistOrderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "liftlog_history_persist_order_seconds",
		Help:    "Duration of full order replacement writes",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	orphansSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftlog_history_orphans_skipped_total",
		Help: "Order entries skipped during rebuild because their record is gone",
	})

	duplicatesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftlog_history_duplicates_skipped_total",
		Help: "Repeated order entries dropped during rebuild",
	})

	divergenceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftlog_history_divergence_total",
		Help: "Updates persisted for records not present in memory",
	})

	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liftlog_history_events_dropped_total",
		Help: "Change notifications dropped because a subscriber was full",
	})
)

func observe(op Op, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mutationsTotal.WithLabelValues(string(op), result).Inc()
}
