package chain

import "time"

// RawBlock is a block as exposed by a BlockSource.
type RawBlock struct {
	Height uint64
	Size   uint64
	// Header is the serialized block header.
	Header []byte
	// Timestamp is the decoded header timestamp. Zero when the source does not decode it.
	Timestamp    time.Time
	Difficulty   float64
	Transactions []RawTransaction
}

// RawTransaction exposes what the statistics need from a transaction.
type RawTransaction struct {
	Coinbase bool
	Outputs  []RawOutput
}

// RawOutput is a transaction output value in satoshis.
type RawOutput struct {
	Value int64
}
