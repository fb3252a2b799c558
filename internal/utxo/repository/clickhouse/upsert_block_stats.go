package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

const upsertBlockStatsQuery = `
INSERT INTO utxo_block_stats (
	height,
	timestamp,
	num_transactions,
	size,
	minted_value,
	output_value,
	difficulty
) VALUES`

// UpsertBlockStats inserts block rows; a newer row replaces an older one of the same height on merge.
func (r *Repository) UpsertBlockStats(ctx context.Context, blocks []model.BlockStats) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_block_stats", err, start)
	}()

	if len(blocks) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, upsertBlockStatsQuery)
	if err != nil {
		return fmt.Errorf("prepare block stats batch: %w", err)
	}

	for _, b := range blocks {
		if err = batch.Append(
			b.Height,
			b.Timestamp.UTC(),
			b.NumTransactions,
			b.Size,
			b.MintedValue,
			b.OutputValue,
			b.Difficulty,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append block height %d: %w", b.Height, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert block stats: %w", err)
	}
	return nil
}
