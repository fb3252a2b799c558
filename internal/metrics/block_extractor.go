package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractorProcessHeightTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_extractor",
		Name:      "process_height_total",
		Help:      "Count of processed block heights.",
	}, []string{"network", "status"})

	extractorProcessHeightDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_extractor",
		Name:      "process_height_duration_seconds",
		Help:      "Duration of fetching and deriving statistics for a single height.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	extractorSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_extractor",
		Name:      "skipped_heights_total",
		Help:      "Count of heights skipped by reason.",
	}, []string{"network", "reason"})

	extractorLastHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_extractor",
		Name:      "last_height",
		Help:      "Last successfully processed block height.",
	}, []string{"network"})
)

// BlockExtractor tracks block extractor progress.
type BlockExtractor struct {
	network model.Network
}

// NewBlockExtractor constructs a BlockExtractor metrics collector.
func NewBlockExtractor(network model.Network) *BlockExtractor {
	if network == "" {
		network = "unknown"
	}
	return &BlockExtractor{network: network}
}

// ObserveProcessHeight records the outcome of one height.
func (m BlockExtractor) ObserveProcessHeight(err error, height uint64, started time.Time) {
	status := statusOf(err)
	extractorProcessHeightTotal.WithLabelValues(string(m.network), status).Inc()
	extractorProcessHeightDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		extractorLastHeight.WithLabelValues(string(m.network)).Set(float64(height))
	}
}

// ObserveSkipped records a height skipped for reason.
func (m BlockExtractor) ObserveSkipped(reason string) {
	extractorSkippedTotal.WithLabelValues(string(m.network), reason).Inc()
}
