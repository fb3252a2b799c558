package extractor

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	BlockSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*chain.RawBlock, error)
	}
	BlockWriter interface {
		WriteBlock(ctx context.Context, b model.BlockStats) error
		Flush(ctx context.Context) error
	}
	BlockStatsRepository interface {
		UpsertBlockStats(ctx context.Context, blocks []model.BlockStats) error
	}
	Metrics interface {
		ObserveProcessHeight(err error, height uint64, started time.Time)
		ObserveSkipped(reason string)
	}
)
