// Package chain defines interfaces and structs shared between block sources and the extractor.
package chain

import (
	"context"
	"errors"
)

var (
	// ErrBlockNotFound is returned by a BlockSource when no block is known at the requested height.
	ErrBlockNotFound = errors.New("block not found")
	// ErrMalformedBlock is returned by a BlockSource when stored block bytes cannot be decoded.
	ErrMalformedBlock = errors.New("malformed block")
)

// BlockSource provides height-ordered access to raw blocks.
type BlockSource interface {
	LatestHeight(ctx context.Context) (uint64, error)
	FetchBlock(ctx context.Context, height uint64) (*RawBlock, error)
}
