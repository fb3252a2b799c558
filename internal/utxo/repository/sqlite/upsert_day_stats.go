package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

const upsertDayStatsQuery = `
INSERT OR REPLACE INTO days (
	date,
	num_transactions,
	size,
	minted_value,
	output_value,
	priceusd,
	difficulty
) VALUES (?, ?, ?, ?, ?, ?, ?)`

// UpsertDayStats replaces the rows of the given dates in a single transaction.
func (r *Repository) UpsertDayStats(ctx context.Context, days []model.DayStats) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_day_stats", err, start)
	}()

	if len(days) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(days))
	for _, d := range days {
		args, convErr := dayStatsArgs(d)
		if convErr != nil {
			err = fmt.Errorf("day %s: %w", d.Date, convErr)
			return err
		}
		rows = append(rows, args)
	}

	return r.execBatch(ctx, upsertDayStatsQuery, rows)
}

func dayStatsArgs(d model.DayStats) ([]any, error) {
	numTransactions, err := safe.Int64(d.NumTransactions)
	if err != nil {
		return nil, fmt.Errorf("num transactions: %w", err)
	}
	size, err := safe.Int64(d.Size)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	minted, err := safe.Int64(d.MintedValue)
	if err != nil {
		return nil, fmt.Errorf("minted value: %w", err)
	}
	output, err := safe.Int64(d.OutputValue)
	if err != nil {
		return nil, fmt.Errorf("output value: %w", err)
	}
	return []any{int64(d.Date), numTransactions, size, minted, output, d.PriceUSD, d.Difficulty}, nil
}
