package aggregator

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Repository interface {
		BlockStatsPage(ctx context.Context, cursor model.BlockCursor, to int64, limit int) ([]model.BlockStats, error)
		UpsertDayStats(ctx context.Context, days []model.DayStats) error
	}
	PriceLookup interface {
		Price(date model.Date) (decimal.Decimal, bool)
	}
	Metrics interface {
		ObserveBlock()
		ObserveDay(blocks uint64, priced bool)
		ObserveRun(err error, started time.Time)
	}
)
