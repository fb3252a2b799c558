// Package metrics implements Prometheus collectors for the extractor, aggregator, stores and node RPC.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "store_repository",
		Name:      "operations_total",
		Help:      "Count of statistics store operations.",
	}, []string{"operation", "backend", "status"})
	storeRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "store_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of statistics store operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "backend", "status"})
)

// StoreRepository tracks metrics for statistics store operations.
type StoreRepository struct {
	backend string
}

// NewStoreRepository creates a StoreRepository metrics collector for a storage backend (sqlite, clickhouse).
func NewStoreRepository(backend string) *StoreRepository {
	if backend == "" {
		backend = "unknown"
	}
	return &StoreRepository{backend: backend}
}

// Observe records duration and status of a repository operation.
func (m StoreRepository) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	storeRepositoryRequestsTotal.WithLabelValues(operation, m.backend, status).Inc()
	storeRepositoryRequestDuration.WithLabelValues(operation, m.backend, status).Observe(time.Since(started).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
