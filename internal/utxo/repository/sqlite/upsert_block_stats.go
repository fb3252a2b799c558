package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

const upsertBlockStatsQuery = `
INSERT OR REPLACE INTO blocks (
	height,
	timestamp,
	num_transactions,
	size,
	minted_value,
	output_value,
	difficulty
) VALUES (?, ?, ?, ?, ?, ?, ?)`

// UpsertBlockStats replaces the rows of the given heights in a single transaction.
func (r *Repository) UpsertBlockStats(ctx context.Context, blocks []model.BlockStats) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_block_stats", err, start)
	}()

	if len(blocks) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(blocks))
	for _, b := range blocks {
		args, convErr := blockStatsArgs(b)
		if convErr != nil {
			err = fmt.Errorf("block height %d: %w", b.Height, convErr)
			return err
		}
		rows = append(rows, args)
	}

	return r.execBatch(ctx, upsertBlockStatsQuery, rows)
}

func blockStatsArgs(b model.BlockStats) ([]any, error) {
	height, err := safe.Int64(b.Height)
	if err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	numTransactions, err := safe.Int64(b.NumTransactions)
	if err != nil {
		return nil, fmt.Errorf("num transactions: %w", err)
	}
	size, err := safe.Int64(b.Size)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	minted, err := safe.Int64(b.MintedValue)
	if err != nil {
		return nil, fmt.Errorf("minted value: %w", err)
	}
	output, err := safe.Int64(b.OutputValue)
	if err != nil {
		return nil, fmt.Errorf("output value: %w", err)
	}
	return []any{height, b.Timestamp.Unix(), numTransactions, size, minted, output, b.Difficulty}, nil
}

func (r *Repository) execBatch(ctx context.Context, query string, rows [][]any) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, args := range rows {
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("exec statement: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
