package bitcoin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

const (
	// rpcInWarmup is returned by bitcoind while it loads the block index.
	rpcInWarmup btcjson.RPCErrorCode = -28

	warmupRetryDelay = 5 * time.Second
)

var _ chain.BlockSource = (*RPCSource)(nil)

// RPCSource implements chain.BlockSource on top of a bitcoind node.
// Calls made while the node is warming up are retried until it answers or the context ends.
type RPCSource struct {
	rpc   RPCClient
	sleep clock.SleepFunc
}

// NewRPCSource creates an RPCSource.
func NewRPCSource(rpc RPCClient) *RPCSource {
	return &RPCSource{rpc: rpc, sleep: clock.Sleep}
}

// LatestHeight returns the height of the node's best block.
func (s *RPCSource) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := clock.Retry(ctx, s.sleep, warmupRetryDelay, isWarmup, s.rpc.GetBlockCount)
	if err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock retrieves the raw block at height from the node's best chain.
func (s *RPCSource) FetchBlock(ctx context.Context, height uint64) (*chain.RawBlock, error) {
	if height > math.MaxInt64 {
		return nil, fmt.Errorf("block height %d exceeds rpc limit", height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := clock.Retry(ctx, s.sleep, warmupRetryDelay, isWarmup, func() (*chainhash.Hash, error) {
		return s.rpc.GetBlockHash(int64(height))
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("block height %d: %w", height, chain.ErrBlockNotFound)
		}
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	block, err := clock.Retry(ctx, s.sleep, warmupRetryDelay, isWarmup, func() (*wire.MsgBlock, error) {
		return s.rpc.GetBlock(hash)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("block %s: %w", hash, chain.ErrBlockNotFound)
		}
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}
	if block == nil {
		return nil, fmt.Errorf("block %s: empty response", hash)
	}

	size, err := safe.Uint64(block.SerializeSize())
	if err != nil {
		return nil, fmt.Errorf("block %s size: %w", hash, err)
	}
	return ConvertBlock(height, size, block)
}

func rpcErrorCode(err error) (btcjson.RPCErrorCode, bool) {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return 0, false
	}
	return rpcErr.Code, true
}

func isNotFound(err error) bool {
	code, ok := rpcErrorCode(err)
	return ok && (code == btcjson.ErrRPCInvalidParameter || code == btcjson.ErrRPCBlockNotFound)
}

func isWarmup(err error) bool {
	code, ok := rpcErrorCode(err)
	return ok && code == rpcInWarmup
}
