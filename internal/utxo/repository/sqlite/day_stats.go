package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

const dayStatsQuery = `
SELECT date, num_transactions, size, minted_value, output_value, priceusd, difficulty
FROM days
WHERE date >= ? AND date <= ?
ORDER BY date`

// DayStats returns the stored days between from and to, both inclusive.
func (r *Repository) DayStats(ctx context.Context, from, to model.Date) (_ []model.DayStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("day_stats", err, start)
	}()

	rows, err := r.db.QueryContext(ctx, dayStatsQuery, int64(from), int64(to))
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
			date, numTransactions, size, minted, output, price int64
			difficulty                                         float64
		)
		if err = rows.Scan(&date, &numTransactions, &size, &minted, &output, &price, &difficulty); err != nil {
			return nil, fmt.Errorf("scan day stats: %w", err)
		}
		d := model.DayStats{Date: model.Date(date), PriceUSD: price, Difficulty: difficulty}
		for _, f := range []struct {
			dst *uint64
			v   int64
		}{
			{&d.NumTransactions, numTransactions},
			{&d.Size, size},
			{&d.MintedValue, minted},
			{&d.OutputValue, output},
		} {
			if *f.dst, err = safe.Uint64(f.v); err != nil {
				return nil, fmt.Errorf("day %d: %w", date, err)
			}
		}
		days = append(days, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day stats: %w", err)
	}

	return days, nil
}
