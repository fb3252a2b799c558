// Package stats derives block statistics from raw blocks and reduces them into day statistics.
package stats

import "errors"

var (
	// ErrSourceDecoding marks a block that could not be decoded or fails validation.
	ErrSourceDecoding = errors.New("source decoding")
	// ErrStoreWrite marks a write rejected by the statistics store.
	ErrStoreWrite = errors.New("store write")
	// ErrOrderingViolation marks block statistics arriving out of day order.
	ErrOrderingViolation = errors.New("ordering violation")
)
