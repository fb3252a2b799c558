// Package batcher provides a generic buffered batch writer with rate limiting.
package batcher

import (
	"context"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Batcher buffers items and hands them to the flush callback once flushSize items are queued.
// It is not safe for concurrent use; callers own the flushing goroutine.
type Batcher[T any] struct {
	flushCallback func(context.Context, []T) error
	flushSize     int
	rl            ratelimit.Limiter
	logger        *zap.Logger

	buf []T
}

// New constructs a Batcher. rps limits flushes per second, zero or less disables the limit.
func New[T any](logger *zap.Logger, flushCallback func(context.Context, []T) error, flushSize int, rps int) *Batcher[T] {
	if flushSize <= 0 {
		flushSize = 1
	}
	rl := ratelimit.NewUnlimited()
	if rps > 0 {
		rl = ratelimit.New(rps)
	}
	return &Batcher[T]{
		logger:        logger,
		flushCallback: flushCallback,
		flushSize:     flushSize,
		rl:            rl,
		buf:           make([]T, 0, flushSize),
	}
}

// Add queues an item and flushes when the buffer is full.
// A done context still queues the item, so a later Flush with a live context commits it.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	b.buf = append(b.buf, item)
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b.buf) >= b.flushSize {
		return b.Flush(ctx)
	}
	return nil
}

// Len returns the number of queued items.
func (b *Batcher[T]) Len() int {
	return len(b.buf)
}

// Flush hands all queued items to the flush callback.
// On error the items stay queued so a later Flush retries them.
func (b *Batcher[T]) Flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}

	b.rl.Take()
	if err := b.flushCallback(ctx, b.buf); err != nil {
		b.logger.Error("batch not flushed", zap.Int("size", len(b.buf)), zap.Error(err))
		return err
	}
	b.logger.Debug("batch flushed", zap.Int("size", len(b.buf)))
	b.buf = b.buf[:0]
	return nil
}
