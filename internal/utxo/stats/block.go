package stats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

// headerTimestampOffset is the position of nTime in a serialized block header.
const headerTimestampOffset = 68

var (
	errNoTransactions = errors.New("block has no transactions")
	errNoCoinbase     = errors.New("block has no coinbase transaction")
)

// HeaderTimestamp reads the little-endian uint32 timestamp from a serialized block header.
func HeaderTimestamp(header []byte) (uint32, error) {
	if len(header) < headerTimestampOffset+4 {
		return 0, fmt.Errorf("header too short: %d bytes", len(header))
	}
	return binary.LittleEndian.Uint32(header[headerTimestampOffset : headerTimestampOffset+4]), nil
}

// BuildBlockStats derives the statistics of a single block.
// A block that cannot produce a correct record yields an error wrapping ErrSourceDecoding.
func BuildBlockStats(b *chain.RawBlock) (model.BlockStats, error) {
	if b == nil {
		return model.BlockStats{}, fmt.Errorf("%w: nil block", ErrSourceDecoding)
	}
	fail := func(err error) (model.BlockStats, error) {
		return model.BlockStats{}, fmt.Errorf("%w: block height %d: %w", ErrSourceDecoding, b.Height, err)
	}

	timestamp := b.Timestamp
	if timestamp.IsZero() {
		sec, err := HeaderTimestamp(b.Header)
		if err != nil {
			return fail(err)
		}
		timestamp = time.Unix(int64(sec), 0)
	}
	if b.Size == 0 {
		return fail(errors.New("block size is zero"))
	}
	if math.IsNaN(b.Difficulty) || b.Difficulty < 0 {
		return fail(fmt.Errorf("invalid difficulty %v", b.Difficulty))
	}
	if len(b.Transactions) == 0 {
		return fail(errNoTransactions)
	}

	var minted, output uint64
	coinbase := false
	for i, tx := range b.Transactions {
		var sum uint64
		for j, out := range tx.Outputs {
			value, err := safe.Uint64(out.Value)
			if err != nil {
				return fail(fmt.Errorf("tx %d output %d: %w", i, j, err))
			}
			sum += value
		}
		output += sum
		if tx.Coinbase {
			minted += sum
			coinbase = true
		}
	}
	if !coinbase {
		return fail(errNoCoinbase)
	}

	return model.BlockStats{
		Height:          b.Height,
		Timestamp:       timestamp.UTC(),
		NumTransactions: uint64(len(b.Transactions)),
		Size:            b.Size,
		MintedValue:     minted,
		OutputValue:     output,
		Difficulty:      b.Difficulty,
	}, nil
}
