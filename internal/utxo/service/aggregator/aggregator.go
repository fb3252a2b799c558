// Package aggregator reduces stored block statistics into per-day statistics.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/stats"
	"go.uber.org/zap"
)

// Config selects the blocks to aggregate by unix timestamp.
// EndTS is inclusive; zero leaves the range open.
type Config struct {
	StartTS  int64
	EndTS    int64
	PageSize int
}

// Summary reports what a run did.
type Summary struct {
	Blocks   uint64
	Days     uint64
	Priced   uint64
	FirstDay model.Date
	LastDay  model.Date
}

// Service reads block statistics in timestamp order and upserts one DayStats per UTC day.
type Service struct {
	logger  *zap.Logger
	repo    Repository
	prices  PriceLookup
	metrics Metrics
	writer  *dayWriter
	cfg     Config

	pending uint64
	summary Summary
}

// NewService builds a Service. Days are upserted in batches of batchSize.
func NewService(
	repo Repository,
	prices PriceLookup,
	metrics Metrics,
	cfg Config,
	batchSize int,
	logger *zap.Logger,
) (*Service, error) {
	if metrics == nil {
		return nil, errors.New("day aggregator metrics is required")
	}
	if prices == nil {
		return nil, errors.New("day aggregator price lookup is required")
	}
	if cfg.EndTS != 0 && cfg.EndTS < cfg.StartTS {
		return nil, fmt.Errorf("end timestamp %d is before start timestamp %d", cfg.EndTS, cfg.StartTS)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger = logger.Named("aggregator")

	return &Service{
		logger:  logger,
		repo:    repo,
		prices:  prices,
		metrics: metrics,
		writer:  newDayWriter(repo, logger, batchSize),
		cfg:     cfg,
	}, nil
}

// Run aggregates every stored block in the configured range.
// Days completed before an abort or a cancellation are committed; the open day is not.
func (s *Service) Run(ctx context.Context) (_ Summary, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRun(err, started)
	}()

	s.pending = 0
	s.summary = Summary{}
	reducer := stats.NewDayReducer(s.prices, s.emit)

	to := s.cfg.EndTS
	if to == 0 {
		to = math.MaxInt64
	}
	cursor := model.BlockCursor{Timestamp: s.cfg.StartTS}

	s.logger.Info("aggregating days",
		zap.Time("start", time.Unix(s.cfg.StartTS, 0).UTC()),
		zap.Int64("end_ts", s.cfg.EndTS))

	var page []model.BlockStats
	for {
		if err = ctx.Err(); err != nil {
			return s.summary, s.abort(ctx, err)
		}

		page, err = s.repo.BlockStatsPage(ctx, cursor, to, s.cfg.PageSize)
		if err != nil {
			return s.summary, s.abort(ctx, fmt.Errorf("read block stats from timestamp %d height %d: %w", cursor.Timestamp, cursor.Height, err))
		}

		for _, b := range page {
			s.metrics.ObserveBlock()
			if err = reducer.Add(ctx, b); err != nil {
				if errors.Is(err, stats.ErrStoreWrite) {
					return s.summary, err
				}
				return s.summary, s.abort(ctx, err)
			}
			s.pending++
			s.summary.Blocks++
		}

		if len(page) < s.cfg.PageSize {
			break
		}
		cursor = cursor.Next(page[len(page)-1])
	}

	if err = reducer.Close(ctx); err != nil {
		return s.summary, err
	}
	if err = s.writer.Flush(ctx); err != nil {
		return s.summary, err
	}
	return s.summary, nil
}

func (s *Service) abort(ctx context.Context, cause error) error {
	if err := s.writer.Flush(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Service) emit(ctx context.Context, day model.DayStats) error {
	_, priced := s.prices.Price(day.Date)
	s.metrics.ObserveDay(s.pending, priced)

	s.logger.Info("day aggregated",
		zap.Stringer("date", day.Date),
		zap.Uint64("blocks", s.pending),
		zap.Uint64("num_transactions", day.NumTransactions),
		zap.Uint64("size", day.Size),
		zap.String("minted", stats.BTC(day.MintedValue)),
		zap.String("output", stats.BTC(day.OutputValue)),
		zap.Int64("priceusd", day.PriceUSD),
		zap.Float64("difficulty", day.Difficulty),
	)

	s.pending = 0
	if s.summary.Days == 0 {
		s.summary.FirstDay = day.Date
	}
	s.summary.LastDay = day.Date
	s.summary.Days++
	if priced {
		s.summary.Priced++
	}
	return s.writer.WriteDay(ctx, day)
}
