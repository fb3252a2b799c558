package stats

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/shopspring/decimal"
)

// PriceLookup returns the USD price of one coin on a day.
type PriceLookup interface {
	Price(date model.Date) (decimal.Decimal, bool)
}

// PriceCents converts a USD price to whole cents, rounding half away from zero.
func PriceCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

// DayAccumulator sums block statistics of a single day.
type DayAccumulator struct {
	date            model.Date
	blocks          uint64
	numTransactions uint64
	size            uint64
	mintedValue     uint64
	outputValue     uint64
	difficulty      float64
}

// NewDayAccumulator returns an empty accumulator for date.
func NewDayAccumulator(date model.Date) *DayAccumulator {
	return &DayAccumulator{date: date}
}

// Date returns the day being accumulated.
func (a *DayAccumulator) Date() model.Date {
	return a.date
}

// Blocks returns the number of absorbed blocks.
func (a *DayAccumulator) Blocks() uint64 {
	return a.blocks
}

// Add absorbs a block into the running sums.
func (a *DayAccumulator) Add(b model.BlockStats) {
	a.blocks++
	a.numTransactions += b.NumTransactions
	a.size += b.Size
	a.mintedValue += b.MintedValue
	a.outputValue += b.OutputValue
	a.difficulty += b.Difficulty
}

// Stats averages the absorbed blocks. Integer fields use floor division, difficulty real division.
// It reports false for an empty accumulator.
func (a *DayAccumulator) Stats(prices PriceLookup) (model.DayStats, bool) {
	if a.blocks == 0 {
		return model.DayStats{}, false
	}

	var cents int64
	if prices != nil {
		if price, ok := prices.Price(a.date); ok {
			cents = PriceCents(price)
		}
	}

	return model.DayStats{
		Date:            a.date,
		NumTransactions: a.numTransactions / a.blocks,
		Size:            a.size / a.blocks,
		MintedValue:     a.mintedValue / a.blocks,
		OutputValue:     a.outputValue / a.blocks,
		PriceUSD:        cents,
		Difficulty:      a.difficulty / float64(a.blocks),
	}, true
}

// DayReducer buckets timestamp-ordered block statistics into UTC days and emits one DayStats per day.
type DayReducer struct {
	prices  PriceLookup
	emit    func(context.Context, model.DayStats) error
	current *DayAccumulator
}

// NewDayReducer builds a reducer that passes every completed day to emit.
func NewDayReducer(prices PriceLookup, emit func(context.Context, model.DayStats) error) *DayReducer {
	return &DayReducer{prices: prices, emit: emit}
}

// Add absorbs the next block. Crossing into a later day emits the previous one first.
// A block dated before the open day is rejected with ErrOrderingViolation.
func (r *DayReducer) Add(ctx context.Context, b model.BlockStats) error {
	date := model.DateOf(b.Timestamp)
	switch {
	case r.current == nil:
		r.current = NewDayAccumulator(date)
	case date < r.current.date:
		return fmt.Errorf("%w: block height %d dated %s after day %s", ErrOrderingViolation, b.Height, date, r.current.date)
	case date > r.current.date:
		if err := r.flush(ctx); err != nil {
			return err
		}
		r.current = NewDayAccumulator(date)
	}
	r.current.Add(b)
	return nil
}

// Close emits the open day, if any. It must be called once the input is exhausted.
func (r *DayReducer) Close(ctx context.Context) error {
	if r.current == nil {
		return nil
	}
	err := r.flush(ctx)
	r.current = nil
	return err
}

func (r *DayReducer) flush(ctx context.Context) error {
	day, ok := r.current.Stats(r.prices)
	if !ok {
		return nil
	}
	return r.emit(ctx, day)
}
