package revenue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/etnz/revenue/date"
	"github.com/shopspring/decimal"
)

// R is a helper for test to create a row from const.
func R(ticker, name, on string, rev float64) Row {
	return Row{Ticker: ticker, Name: name, Date: date.MustParse(on), Revenue: decimal.NewNullDecimal(decimal.NewFromFloat(rev))}
}

// D is a helper for test to create a valid decimal from a string.
func D(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

// monthly returns one row per month for ticker starting on first.
func monthly(ticker, first string, revenues ...float64) Table {
	on := date.MustParse(first)
	t := Table{}
	for i, rev := range revenues {
		t = append(t, Row{Ticker: ticker, Date: on.AddMonths(i), Revenue: decimal.NewNullDecimal(decimal.NewFromFloat(rev))})
	}
	return t
}

var errProvider = errors.New("provider down")

// fakeFetcher serves tables from memory and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	tables map[string]Table
	fail   map[string]bool
	calls  map[string]int
}

func newFakeFetcher(tables map[string]Table, failing ...string) *fakeFetcher {
	f := &fakeFetcher{tables: tables, fail: make(map[string]bool), calls: make(map[string]int)}
	for _, t := range failing {
		f.fail[t] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, ticker string) (Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if f.fail[ticker] {
		return nil, fmt.Errorf("fetch %s: %w", ticker, errProvider)
	}
	return f.tables[ticker], nil
}

func (f *fakeFetcher) count(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

// fakeSource returns fixed provider records.
type fakeSource struct {
	records map[string][]Record
	err     error
	calls   int
	start   date.Date
}

func (s *fakeSource) MonthRevenue(ctx context.Context, ticker string, start date.Date) ([]Record, error) {
	s.calls++
	s.start = start
	if s.err != nil {
		return nil, s.err
	}
	return s.records[ticker], nil
}
