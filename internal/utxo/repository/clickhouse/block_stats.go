package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

const blockStatsPageQuery = `
SELECT
	height,
	timestamp,
	num_transactions,
	size,
	minted_value,
	output_value,
	difficulty
FROM utxo_block_stats FINAL
WHERE (toInt64(toUnixTimestamp(timestamp)) > ?
	OR (toInt64(toUnixTimestamp(timestamp)) = ? AND height >= ?))
	AND toInt64(toUnixTimestamp(timestamp)) <= ?
ORDER BY timestamp ASC, height ASC
LIMIT ?`

// BlockStatsPage returns up to limit blocks ordered by (timestamp, height), starting at cursor
// and ending at the inclusive unix timestamp to.
func (r *Repository) BlockStatsPage(ctx context.Context, cursor model.BlockCursor, to int64, limit int) (_ []model.BlockStats, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("block_stats_page", err, start)
	}()

	rows, err := r.conn.Query(ctx, blockStatsPageQuery, cursor.Timestamp, cursor.Timestamp, cursor.Height, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query block stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var blocks []model.BlockStats
	for rows.Next() {
		var b model.BlockStats
		if err = rows.Scan(
			&b.Height,
			&b.Timestamp,
			&b.NumTransactions,
			&b.Size,
			&b.MintedValue,
			&b.OutputValue,
			&b.Difficulty,
		); err != nil {
			return nil, fmt.Errorf("scan block stats: %w", err)
		}
		b.Timestamp = b.Timestamp.UTC()
		blocks = append(blocks, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block stats: %w", err)
	}

	return blocks, nil
}
