// Package extractor derives per-block statistics from a block source and upserts them by height.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/stats"
	"go.uber.org/zap"
)

// Config bounds a run. Both heights are inclusive.
type Config struct {
	MinHeight     uint64
	MaxHeight     uint64
	SkipMalformed bool
}

// Summary reports what a run did.
type Summary struct {
	FromHeight uint64
	ToHeight   uint64
	Written    uint64
	Missing    uint64
	Malformed  uint64
}

// Service walks a height range of a block source and stores one BlockStats per height.
type Service struct {
	logger  *zap.Logger
	source  BlockSource
	writer  BlockWriter
	metrics Metrics
	cfg     Config
}

// NewService builds a Service writing through repo in batches of batchSize records.
func NewService(
	repo BlockStatsRepository,
	source BlockSource,
	metrics Metrics,
	cfg Config,
	batchSize int,
	logger *zap.Logger,
) (*Service, error) {
	if metrics == nil {
		return nil, errors.New("block extractor metrics is required")
	}
	if cfg.MinHeight > cfg.MaxHeight {
		return nil, fmt.Errorf("min height %d is above max height %d", cfg.MinHeight, cfg.MaxHeight)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger = logger.Named("extractor")

	return &Service{
		logger:  logger,
		source:  source,
		writer:  newBlockWriter(repo, logger, batchSize),
		metrics: metrics,
		cfg:     cfg,
	}, nil
}

// Run processes every height of the configured range that the source knows about.
// Records buffered before a decoding abort or a cancellation are committed before Run returns.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	summary := Summary{FromHeight: s.cfg.MinHeight}

	latest, err := s.source.LatestHeight(ctx)
	if err != nil {
		return summary, fmt.Errorf("latest height: %w", err)
	}
	last := min(s.cfg.MaxHeight, latest)
	summary.ToHeight = last
	if s.cfg.MinHeight > last {
		s.logger.Info("nothing to extract",
			zap.Uint64("min_height", s.cfg.MinHeight),
			zap.Uint64("latest_height", latest))
		return summary, nil
	}

	s.logger.Info("extracting blocks",
		zap.Uint64("from", s.cfg.MinHeight),
		zap.Uint64("to", last),
		zap.Uint64("latest_height", latest))

	for height := s.cfg.MinHeight; ; height++ {
		if err = ctx.Err(); err != nil {
			return summary, s.abort(ctx, err)
		}
		if err = s.processHeight(ctx, height, &summary); err != nil {
			if errors.Is(err, stats.ErrStoreWrite) {
				return summary, err
			}
			return summary, s.abort(ctx, err)
		}
		if height == last {
			break
		}
	}

	if err = s.writer.Flush(ctx); err != nil {
		return summary, err
	}
	return summary, nil
}

// abort commits what is buffered and returns cause, joined with a failed commit.
func (s *Service) abort(ctx context.Context, cause error) error {
	if err := s.writer.Flush(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *Service) processHeight(ctx context.Context, height uint64, summary *Summary) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveProcessHeight(err, height, started)
	}()

	raw, err := s.source.FetchBlock(ctx, height)
	switch {
	case err == nil:
	case errors.Is(err, chain.ErrBlockNotFound):
		s.logger.Warn("block missing from source, skipping", zap.Uint64("height", height), zap.Error(err))
		s.metrics.ObserveSkipped(skipReasonMissing)
		summary.Missing++
		return nil
	case errors.Is(err, chain.ErrMalformedBlock):
		return s.malformed(height, fmt.Errorf("%w: block height %d: %w", stats.ErrSourceDecoding, height, err), summary)
	default:
		return fmt.Errorf("fetch block height %d: %w", height, err)
	}

	block, err := stats.BuildBlockStats(raw)
	if err != nil {
		return s.malformed(height, err, summary)
	}

	if err = s.writer.WriteBlock(ctx, block); err != nil {
		return err
	}
	summary.Written++

	s.logger.Info("block processed",
		zap.Uint64("height", block.Height),
		zap.Time("timestamp", block.Timestamp),
		zap.Float64("difficulty", block.Difficulty),
		zap.Uint64("num_transactions", block.NumTransactions),
		zap.Uint64("size", block.Size),
		zap.String("minted", stats.BTC(block.MintedValue)),
		zap.String("output", stats.BTC(block.OutputValue)),
	)
	return nil
}

func (s *Service) malformed(height uint64, err error, summary *Summary) error {
	if !s.cfg.SkipMalformed {
		s.logger.Error("malformed block", zap.Uint64("height", height), zap.Error(err))
		return err
	}
	s.logger.Warn("malformed block, skipping", zap.Uint64("height", height), zap.Error(err))
	s.metrics.ObserveSkipped(skipReasonMalformed)
	summary.Malformed++
	return nil
}
