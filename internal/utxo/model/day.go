package model

import (
	"fmt"
	"time"
)

// Date is a UTC calendar day encoded as YYYYMMDD.
type Date uint32

const dateLayout = "2006-01-02"

// DateOf returns the UTC calendar day of t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date(y*10000 + int(m)*100 + d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(int(d/10000), time.Month(d/100%100), int(d%100), 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// DayStats holds averaged statistics for all blocks mined on one UTC day.
type DayStats struct {
	Date            Date
	NumTransactions uint64
	Size            uint64
	MintedValue     uint64
	OutputValue     uint64
	PriceUSD        int64 // cents
	Difficulty      float64
}
