package transport

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type Repository interface {
	BlockStatsPage(ctx context.Context, cursor model.BlockCursor, to int64, limit int) ([]model.BlockStats, error)
	DayStats(ctx context.Context, from, to model.Date) ([]model.DayStats, error)
}
