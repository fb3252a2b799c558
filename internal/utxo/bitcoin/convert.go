// Package bitcoin reads Bitcoin blocks from a node data directory or over JSON-RPC.
package bitcoin

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
)

// difficultyOneBits is the compact target of difficulty 1.
const difficultyOneBits = 0x1d00ffff

var difficultyOneTarget = new(big.Float).SetInt(blockchain.CompactToBig(difficultyOneBits))

// Difficulty returns the difficulty of a compact target relative to the 0x1d00ffff target.
func Difficulty(bits uint32) (float64, error) {
	target := blockchain.CompactToBig(bits)
	if target.Sign() <= 0 {
		return 0, fmt.Errorf("invalid bits %08x", bits)
	}
	difficulty, _ := new(big.Float).Quo(difficultyOneTarget, new(big.Float).SetInt(target)).Float64()
	return difficulty, nil
}

// ConvertBlock maps a decoded block at height into a chain.RawBlock. size is the serialized block size in bytes.
func ConvertBlock(height, size uint64, block *wire.MsgBlock) (*chain.RawBlock, error) {
	if block == nil {
		return nil, fmt.Errorf("block %d is nil", height)
	}

	var header bytes.Buffer
	if err := block.Header.Serialize(&header); err != nil {
		return nil, fmt.Errorf("block %d serialize header: %w", height, err)
	}
	difficulty, err := Difficulty(block.Header.Bits)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w: %w", height, err, chain.ErrMalformedBlock)
	}

	txs := make([]chain.RawTransaction, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		outputs := make([]chain.RawOutput, 0, len(tx.TxOut))
		for _, out := range tx.TxOut {
			outputs = append(outputs, chain.RawOutput{Value: out.Value})
		}
		txs = append(txs, chain.RawTransaction{
			Coinbase: blockchain.IsCoinBaseTx(tx),
			Outputs:  outputs,
		})
	}

	return &chain.RawBlock{
		Height:       height,
		Size:         size,
		Header:       header.Bytes(),
		Timestamp:    block.Header.Timestamp.UTC(),
		Difficulty:   difficulty,
		Transactions: txs,
	}, nil
}
