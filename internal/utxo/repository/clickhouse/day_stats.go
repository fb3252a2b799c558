package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

const dayStatsQuery = `
SELECT
	date,
	num_transactions,
	size,
	minted_value,
	output_value,
	priceusd,
	difficulty
FROM utxo_day_stats FINAL
WHERE date >= ? AND date <= ?
ORDER BY date ASC`

// DayStats returns the stored days between from and to, both inclusive.
func (r *Repository) DayStats(ctx context.Context, from, to model.Date) (_ []model.DayStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("day_stats", err, start)
	}()

	rows, err := r.conn.Query(ctx, dayStatsQuery, uint32(from), uint32(to))
	if err != nil {
		return nil, fmt.Errorf("query day stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var days []model.DayStats
	for rows.Next() {
		var (
			d    model.DayStats
			date uint32
		)
		if err = rows.Scan(
			&date,
			&d.NumTransactions,
			&d.Size,
			&d.MintedValue,
			&d.OutputValue,
			&d.PriceUSD,
			&d.Difficulty,
		); err != nil {
			return nil, fmt.Errorf("scan day stats: %w", err)
		}
		d.Date = model.Date(date)
		days = append(days, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day stats: %w", err)
	}

	return days, nil
}
