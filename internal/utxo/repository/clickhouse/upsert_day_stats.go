package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

const upsertDayStatsQuery = `
INSERT INTO utxo_day_stats (
	date,
	num_transactions,
	size,
	minted_value,
	output_value,
	priceusd,
	difficulty
) VALUES`

// UpsertDayStats inserts day rows; a newer row replaces an older one of the same date on merge.
func (r *Repository) UpsertDayStats(ctx context.Context, days []model.DayStats) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_day_stats", err, start)
	}()

	if len(days) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, upsertDayStatsQuery)
	if err != nil {
		return fmt.Errorf("prepare day stats batch: %w", err)
	}

	for _, d := range days {
		if err = batch.Append(
			uint32(d.Date),
			d.NumTransactions,
			d.Size,
			d.MintedValue,
			d.OutputValue,
			d.PriceUSD,
			d.Difficulty,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append day %s: %w", d.Date, err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert day stats: %w", err)
	}
	return nil
}
