package extractor

const (
	// DefaultBatchSize is the number of block records committed per store transaction.
	DefaultBatchSize = 1000
	// DefaultMaxHeight is the last height processed when no upper bound is given.
	DefaultMaxHeight uint64 = 2_000_000

	skipReasonMissing   = "missing"
	skipReasonMalformed = "malformed"
)
