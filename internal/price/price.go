// Package price loads the daily USD price feed used to annotate day statistics.
package price

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/shopspring/decimal"
)

// Opener opens a price feed location for reading.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Table maps UTC days to the USD price of one coin.
type Table struct {
	prices map[model.Date]decimal.Decimal
}

// NewTable builds a Table from a prepared map.
func NewTable(prices map[model.Date]decimal.Decimal) *Table {
	if prices == nil {
		prices = make(map[model.Date]decimal.Decimal)
	}
	return &Table{prices: prices}
}

// Price returns the price of date and whether the feed has one.
func (t *Table) Price(date model.Date) (decimal.Decimal, bool) {
	p, ok := t.prices[date]
	return p, ok
}

// Len returns the number of priced days.
func (t *Table) Len() int {
	return len(t.prices)
}

// Load opens location with opener and parses it.
func Load(ctx context.Context, location string, opener Opener) (_ *Table, err error) {
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open price feed %s: %w", location, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close price feed %s: %w", location, closeErr)
		}
	}()

	t, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("price feed %s: %w", location, err)
	}
	return t, nil
}

// Parse reads YYYY-MM-DD,price rows. A header on the first line is skipped, as are blank lines.
// A later row for the same day replaces the earlier one.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	prices := make(map[model.Date]decimal.Decimal)
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date and price, got %d fields", line, len(record))
		}
		date, err := model.ParseDate(strings.TrimSpace(record[0]))
		if err != nil {
			if first {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: parse price %q: %w", line, record[1], err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("line %d: negative price %s", line, price)
		}
		prices[date] = price
	}
	return NewTable(prices), nil
}
