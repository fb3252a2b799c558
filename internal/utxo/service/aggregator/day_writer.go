package aggregator

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/stats"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/batcher"
	"go.uber.org/zap"
)

type dayWriter struct {
	repo       Repository
	logger     *zap.Logger
	dayBatcher *batcher.Batcher[model.DayStats]
}

func newDayWriter(repo Repository, logger *zap.Logger, batchSize int) *dayWriter {
	w := &dayWriter{
		repo:   repo,
		logger: logger,
	}
	w.dayBatcher = batcher.New[model.DayStats](
		logger.Named("dayBatcher"),
		w.flush,
		batchSize,
		0,
	)
	return w
}

func (w *dayWriter) WriteDay(ctx context.Context, d model.DayStats) error {
	return w.dayBatcher.Add(ctx, d)
}

func (w *dayWriter) Flush(ctx context.Context) error {
	return w.dayBatcher.Flush(ctx)
}

func (w *dayWriter) flush(ctx context.Context, days []model.DayStats) error {
	if err := w.repo.UpsertDayStats(ctx, days); err != nil {
		return fmt.Errorf("%w: days %s..%s: %w", stats.ErrStoreWrite, days[0].Date, days[len(days)-1].Date, err)
	}
	w.logger.Debug("UpsertDayStats", zap.Int("count", len(days)), zap.Stringer("last_date", days[len(days)-1].Date))
	return nil
}
