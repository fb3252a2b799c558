package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregatorDaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "day_aggregator",
		Name:      "days_total",
		Help:      "Count of reduced days.",
	}, []string{"priced"})

	aggregatorDayBlocks = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "day_aggregator",
		Name:      "day_blocks",
		Help:      "Number of blocks folded into one day.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1..512
	})

	aggregatorBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "day_aggregator",
		Name:      "blocks_total",
		Help:      "Count of block statistics read by the aggregator.",
	})

	aggregatorRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "day_aggregator",
		Name:      "run_duration_seconds",
		Help:      "Duration of a full aggregation run.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
	}, []string{"status"})
)

// DayAggregator tracks day aggregator progress.
type DayAggregator struct{}

// NewDayAggregator constructs a DayAggregator metrics collector.
func NewDayAggregator() *DayAggregator {
	return &DayAggregator{}
}

// ObserveBlock counts one block read from the store.
func (m DayAggregator) ObserveBlock() {
	aggregatorBlocksTotal.Inc()
}

// ObserveDay records a reduced day and how many blocks it folded.
func (m DayAggregator) ObserveDay(blocks uint64, priced bool) {
	label := "false"
	if priced {
		label = "true"
	}
	aggregatorDaysTotal.WithLabelValues(label).Inc()
	aggregatorDayBlocks.Observe(float64(blocks))
}

// ObserveRun records a finished run.
func (m DayAggregator) ObserveRun(err error, started time.Time) {
	aggregatorRunDuration.WithLabelValues(statusOf(err)).Observe(time.Since(started).Seconds())
}
