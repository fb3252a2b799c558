// Package model defines domain models for block and day statistics.
package model

import "time"

// BlockStats holds the per-block statistics persisted in the blocks table.
// Values are in satoshis.
type BlockStats struct {
	Height          uint64
	Timestamp       time.Time
	NumTransactions uint64
	Size            uint64
	MintedValue     uint64
	OutputValue     uint64
	Difficulty      float64
}

// BlockCursor positions a timestamp-ordered scan over block statistics.
// A page starts at the first block with (Timestamp, Height) >= (cursor.Timestamp, cursor.Height).
type BlockCursor struct {
	Timestamp int64
	Height    uint64
}

// Next returns the cursor right after b in (timestamp, height) order.
func (c BlockCursor) Next(b BlockStats) BlockCursor {
	return BlockCursor{Timestamp: b.Timestamp.Unix(), Height: b.Height + 1}
}
