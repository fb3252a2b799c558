// Package repository opens the statistics store backend selected by configuration.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/repository/sqlite"
	"go.uber.org/zap"
)

// Store is the block and day statistics store shared by every binary.
type Store interface {
	UpsertBlockStats(ctx context.Context, blocks []model.BlockStats) error
	BlockStatsPage(ctx context.Context, cursor model.BlockCursor, to int64, limit int) ([]model.BlockStats, error)
	UpsertDayStats(ctx context.Context, days []model.DayStats) error
	DayStats(ctx context.Context, from, to model.Date) ([]model.DayStats, error)
	Close() error
}

var (
	_ Store = (*sqlite.Repository)(nil)
	_ Store = (*clickhouse.Repository)(nil)
)

// Options selects a backend. A ClickHouse DSN takes precedence over the SQLite path.
type Options struct {
	SQLitePath    string
	ClickhouseDSN string
	// Migrate applies the embedded SQLite schema. ClickHouse schema is managed by the migrations binary.
	Migrate bool
	// ReadOnly opens an existing SQLite file without write access and never migrates it.
	ReadOnly bool
}

// Open connects the configured backend.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch {
	case opts.ClickhouseDSN != "":
		if opts.Migrate {
			logger.Warn("schema creation is not applied to ClickHouse, run the migrations binary instead")
		}
		repo, err := clickhouse.NewRepository(opts.ClickhouseDSN, metrics.NewStoreRepository("clickhouse"))
		if err != nil {
			return nil, fmt.Errorf("init clickhouse repository: %w", err)
		}
		logger.Info("using clickhouse store")
		return repo, nil

	case opts.SQLitePath != "" && opts.ReadOnly:
		repo, err := sqlite.NewReadOnlyRepository(opts.SQLitePath, metrics.NewStoreRepository("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("init sqlite repository: %w", err)
		}
		logger.Info("using read-only sqlite store", zap.String("path", opts.SQLitePath))
		return repo, nil

	case opts.SQLitePath != "":
		repo, err := sqlite.NewRepository(opts.SQLitePath, metrics.NewStoreRepository("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("init sqlite repository: %w", err)
		}
		if opts.Migrate {
			if err = repo.Migrate(ctx); err != nil {
				_ = repo.Close()
				return nil, fmt.Errorf("create sqlite schema: %w", err)
			}
		}
		logger.Info("using sqlite store", zap.String("path", opts.SQLitePath), zap.Bool("migrated", opts.Migrate))
		return repo, nil

	default:
		return nil, errors.New("either a sqlite path or a clickhouse dsn is required")
	}
}
