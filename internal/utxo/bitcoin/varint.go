package bitcoin

import (
	"errors"
	"io"
	"math"
)

var errVarIntOverflow = errors.New("varint overflows uint64")

// readVarInt decodes the base-128 VARINT used by Bitcoin Core's on-disk block index.
// Unlike the wire CompactSize, every continuation byte adds one before shifting.
func readVarInt(r io.ByteReader) (uint64, error) {
	var n uint64
	for {
		ch, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if n > math.MaxUint64>>7 {
			return 0, errVarIntOverflow
		}
		n = (n << 7) | uint64(ch&0x7F)
		if ch&0x80 == 0 {
			return n, nil
		}
		if n == math.MaxUint64 {
			return 0, errVarIntOverflow
		}
		n++
	}
}
