package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/pkg/safe"
)

const blockStatsPageQuery = `
SELECT height, timestamp, num_transactions, size, minted_value, output_value, difficulty
FROM blocks
WHERE (timestamp > ? OR (timestamp = ? AND height >= ?))
  AND timestamp <= ?
ORDER BY timestamp, height
LIMIT ?`

// BlockStatsPage returns up to limit blocks ordered by (timestamp, height), starting at cursor
// and ending at the inclusive unix timestamp to.
func (r *Repository) BlockStatsPage(ctx context.Context, cursor model.BlockCursor, to int64, limit int) (_ []model.BlockStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("block_stats_page", err, start)
	}()

	height, err := safe.Int64(cursor.Height)
	if err != nil {
		return nil, fmt.Errorf("cursor height: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, blockStatsPageQuery, cursor.Timestamp, cursor.Timestamp, height, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query block stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	blocks := make([]model.BlockStats, 0, limit)
	for rows.Next() {
		var (
			h, ts, numTransactions, size, minted, output int64
			difficulty                                   float64
		)
		if err = rows.Scan(&h, &ts, &numTransactions, &size, &minted, &output, &difficulty); err != nil {
			return nil, fmt.Errorf("scan block stats: %w", err)
		}
		b, convErr := blockStatsFromRow(h, ts, numTransactions, size, minted, output, difficulty)
		if convErr != nil {
			err = fmt.Errorf("block height %d: %w", h, convErr)
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block stats: %w", err)
	}

	return blocks, nil
}

func blockStatsFromRow(height, ts, numTransactions, size, minted, output int64, difficulty float64) (model.BlockStats, error) {
	values := []int64{height, numTransactions, size, minted, output}
	converted := make([]uint64, len(values))
	for i, v := range values {
		u, err := safe.Uint64(v)
		if err != nil {
			return model.BlockStats{}, err
		}
		converted[i] = u
	}
	return model.BlockStats{
		Height:          converted[0],
		Timestamp:       time.Unix(ts, 0).UTC(),
		NumTransactions: converted[1],
		Size:            converted[2],
		MintedValue:     converted[3],
		OutputValue:     converted[4],
		Difficulty:      difficulty,
	}, nil
}
