package bitcoin

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Block status flags stored in the index.
const (
	blockHaveData     = 8
	blockHaveUndo     = 16
	blockFailedValid  = 32
	blockFailedChild  = 64
	blockIndexKeyType = 'b'
)

type blockIndexEntry struct {
	hash    chainhash.Hash
	height  uint64
	status  uint64
	txCount uint64
	file    uint64
	dataPos uint64
	header  wire.BlockHeader
}

func (e blockIndexEntry) hasData() bool {
	return e.status&blockHaveData != 0
}

func (e blockIndexEntry) failed() bool {
	return e.status&(blockFailedValid|blockFailedChild) != 0
}

func parseBlockIndexEntry(hash chainhash.Hash, value []byte) (blockIndexEntry, error) {
	r := bytes.NewReader(value)
	entry := blockIndexEntry{hash: hash}

	// client version
	if _, err := readVarInt(r); err != nil {
		return entry, fmt.Errorf("client version: %w", err)
	}
	var err error
	if entry.height, err = readVarInt(r); err != nil {
		return entry, fmt.Errorf("height: %w", err)
	}
	if entry.status, err = readVarInt(r); err != nil {
		return entry, fmt.Errorf("status: %w", err)
	}
	if entry.txCount, err = readVarInt(r); err != nil {
		return entry, fmt.Errorf("tx count: %w", err)
	}
	if entry.status&(blockHaveData|blockHaveUndo) != 0 {
		if entry.file, err = readVarInt(r); err != nil {
			return entry, fmt.Errorf("file: %w", err)
		}
	}
	if entry.status&blockHaveData != 0 {
		if entry.dataPos, err = readVarInt(r); err != nil {
			return entry, fmt.Errorf("data pos: %w", err)
		}
	}
	if entry.status&blockHaveUndo != 0 {
		if _, err = readVarInt(r); err != nil {
			return entry, fmt.Errorf("undo pos: %w", err)
		}
	}
	if err = entry.header.Deserialize(r); err != nil {
		return entry, fmt.Errorf("header: %w", err)
	}
	return entry, nil
}

// BlockIndex is the best chain reconstructed from a Bitcoin Core block index database.
type BlockIndex struct {
	chain []blockIndexEntry
}

// LoadBlockIndex reads the LevelDB block index at path and walks the best chain back from the valid
// block with data on disk that carries the most cumulative work.
func LoadBlockIndex(path string) (*BlockIndex, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: true, ErrorIfMissing: true})
	if err != nil {
		return nil, fmt.Errorf("open block index %s: %w", path, err)
	}
	defer func() {
		_ = db.Close()
	}()

	entries := make(map[chainhash.Hash]blockIndexEntry)
	var candidates []chainhash.Hash

	iter := db.NewIterator(util.BytesPrefix([]byte{blockIndexKeyType}), nil)
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+chainhash.HashSize {
			continue
		}
		var hash chainhash.Hash
		copy(hash[:], key[1:])

		entry, parseErr := parseBlockIndexEntry(hash, iter.Value())
		if parseErr != nil {
			iter.Release()
			return nil, fmt.Errorf("block index entry %s: %w", hash, parseErr)
		}
		entries[hash] = entry

		if entry.hasData() && !entry.failed() {
			candidates = append(candidates, hash)
		}
	}
	iter.Release()
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate block index: %w", err)
	}

	if len(candidates) == 0 {
		return &BlockIndex{}, nil
	}
	tip := bestTip(entries, candidates)

	chain := make([]blockIndexEntry, tip.height+1)
	for cur := tip; ; {
		chain[cur.height] = cur
		if cur.height == 0 {
			break
		}
		prev, ok := entries[cur.header.PrevBlock]
		if !ok {
			return nil, fmt.Errorf("block %s at height %d: parent %s missing from index", cur.hash, cur.height, cur.header.PrevBlock)
		}
		if prev.height != cur.height-1 {
			return nil, fmt.Errorf("block %s at height %d: parent %s has height %d", cur.hash, cur.height, prev.hash, prev.height)
		}
		cur = prev
	}

	return &BlockIndex{chain: chain}, nil
}

// bestTip picks the candidate with the most cumulative work. Ties go to the greater height, then to
// the first candidate in key order.
func bestTip(entries map[chainhash.Hash]blockIndexEntry, candidates []chainhash.Hash) blockIndexEntry {
	work := make(map[chainhash.Hash]*big.Int, len(entries))
	var (
		tip     blockIndexEntry
		tipWork *big.Int
	)
	for _, hash := range candidates {
		entry := entries[hash]
		w := chainWork(entries, work, hash)
		if tipWork == nil {
			tip, tipWork = entry, w
			continue
		}
		switch cmp := w.Cmp(tipWork); {
		case cmp > 0, cmp == 0 && entry.height > tip.height:
			tip, tipWork = entry, w
		}
	}
	return tip
}

// chainWork sums header work from hash back to the first ancestor missing from the index.
func chainWork(entries map[chainhash.Hash]blockIndexEntry, memo map[chainhash.Hash]*big.Int, hash chainhash.Hash) *big.Int {
	var pending []blockIndexEntry
	base := new(big.Int)
	for cur := hash; ; {
		if w, ok := memo[cur]; ok {
			base = w
			break
		}
		entry, ok := entries[cur]
		if !ok {
			break
		}
		pending = append(pending, entry)
		if entry.height == 0 {
			break
		}
		cur = entry.header.PrevBlock
	}
	for i := len(pending) - 1; i >= 0; i-- {
		base = new(big.Int).Add(base, blockchain.CalcWork(pending[i].header.Bits))
		memo[pending[i].hash] = base
	}
	return base
}

var errEmptyIndex = errors.New("block index has no blocks with data")

// TipHeight returns the height of the best block.
func (i *BlockIndex) TipHeight() (uint64, error) {
	if len(i.chain) == 0 {
		return 0, errEmptyIndex
	}
	return uint64(len(i.chain) - 1), nil
}

func (i *BlockIndex) lookup(height uint64) (blockIndexEntry, bool) {
	if height >= uint64(len(i.chain)) {
		return blockIndexEntry{}, false
	}
	return i.chain[height], true
}
