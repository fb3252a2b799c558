package extractor

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/stats"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/batcher"
	"go.uber.org/zap"
)

type blockWriter struct {
	repo         BlockStatsRepository
	logger       *zap.Logger
	blockBatcher *batcher.Batcher[model.BlockStats]
}

func newBlockWriter(repo BlockStatsRepository, logger *zap.Logger, batchSize int) *blockWriter {
	w := &blockWriter{
		repo:   repo,
		logger: logger,
	}
	w.blockBatcher = batcher.New[model.BlockStats](
		logger.Named("blockBatcher"),
		w.flush,
		batchSize,
		0,
	)
	return w
}

func (w *blockWriter) WriteBlock(ctx context.Context, b model.BlockStats) error {
	return w.blockBatcher.Add(ctx, b)
}

func (w *blockWriter) Flush(ctx context.Context) error {
	return w.blockBatcher.Flush(ctx)
}

func (w *blockWriter) flush(ctx context.Context, blocks []model.BlockStats) error {
	if err := w.repo.UpsertBlockStats(ctx, blocks); err != nil {
		return fmt.Errorf("%w: block heights %d..%d: %w", stats.ErrStoreWrite, blocks[0].Height, blocks[len(blocks)-1].Height, err)
	}
	w.logger.Debug("UpsertBlockStats", zap.Int("count", len(blocks)), zap.Uint64("last_height", blocks[len(blocks)-1].Height))
	return nil
}
