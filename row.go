package revenue

import (
	"cmp"
	"slices"

	"github.com/etnz/revenue/date"
	"github.com/shopspring/decimal"
)

// Row is the revenue of a ticker for a month.
//
// An empty Name, a zero Date or an invalid Revenue are null values.
type Row struct {
	Ticker  string
	Name    string
	Date    date.Date
	Revenue decimal.NullDecimal
}

// Table is a collection of rows.
//
// Methods never modify the receiver's rows in place, they return a new Table.
type Table []Row

// Tickers returns the distinct tickers in order of first appearance.
func (t Table) Tickers() []string {
	var tickers []string
	seen := make(map[string]bool)
	for _, r := range t {
		if !seen[r.Ticker] {
			seen[r.Ticker] = true
			tickers = append(tickers, r.Ticker)
		}
	}
	return tickers
}

// Filter returns the rows whose ticker is in tickers.
func (t Table) Filter(tickers []string) Table {
	keep := make(map[string]bool, len(tickers))
	for _, ticker := range tickers {
		keep[ticker] = true
	}
	out := Table{}
	for _, r := range t {
		if keep[r.Ticker] {
			out = append(out, r)
		}
	}
	return out
}

// Ticker returns the rows of a single ticker.
func (t Table) Ticker(ticker string) Table { return t.Filter([]string{ticker}) }

// FillNames returns a copy where null names are replaced by the registry name.
func (t Table) FillNames(reg *Registry) Table {
	out := slices.Clone(t)
	for i, r := range out {
		if r.Name != "" {
			continue
		}
		if name, ok := reg.Name(r.Ticker); ok {
			out[i].Name = name
		}
	}
	return out
}

// DropNullDates returns the rows with a date.
func (t Table) DropNullDates() Table {
	out := Table{}
	for _, r := range t {
		if !r.Date.IsZero() {
			out = append(out, r)
		}
	}
	return out
}

// SortByDate returns a copy sorted by ascending date, stable.
func (t Table) SortByDate() Table {
	out := slices.Clone(t)
	slices.SortStableFunc(out, func(a, b Row) int { return a.Date.Compare(b.Date) })
	return out
}

// Sort returns a copy sorted by ascending (ticker, date), stable.
func (t Table) Sort() Table {
	out := slices.Clone(t)
	slices.SortStableFunc(out, compareRows)
	return out
}

func compareRows(a, b Row) int {
	if c := cmp.Compare(a.Ticker, b.Ticker); c != 0 {
		return c
	}
	return a.Date.Compare(b.Date)
}

// Dedupe returns the rows sorted by (ticker, date) with at most one row per
// (ticker, date). The last occurrence wins.
func (t Table) Dedupe() Table {
	sorted := t.Sort()
	out := Table{}
	for _, r := range sorted {
		if n := len(out); n > 0 && compareRows(out[n-1], r) == 0 {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
