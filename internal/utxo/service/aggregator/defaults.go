package aggregator

const (
	DefaultPageSize  = 10_000
	DefaultBatchSize = 500
)
