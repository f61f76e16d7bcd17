package revenue

import (
	"github.com/shopspring/decimal"
)

// yoyLag is the number of rows back a year over year change compares to.
const yoyLag = 12

// EnrichedRow is a Row with its growth rates.
//
// MoM compares to the previous row of the same ticker, YoY to the row twelve
// positions earlier. Both are fractions (0.1 is +10%) and null when the earlier
// row is missing or its revenue is null or zero.
type EnrichedRow struct {
	Row
	MoM decimal.NullDecimal
	YoY decimal.NullDecimal
}

// Enriched is a table with growth rates, sorted by ticker then date.
type Enriched []EnrichedRow

// Enrich computes month over month and year over year growth of t.
//
// Rows are compared by position within each ticker's chronological sequence,
// not by calendar arithmetic: a missing month in a series shifts the
// comparison to the wrong period.
func Enrich(t Table) Enriched {
	if len(t) == 0 {
		return Enriched{}
	}
	sorted := t.Sort()
	out := make(Enriched, len(sorted))
	start := 0 // index of the first row of the current ticker
	for i, r := range sorted {
		if i > 0 && sorted[i-1].Ticker != r.Ticker {
			start = i
		}
		out[i] = EnrichedRow{Row: r}
		if pos := i - start; pos >= 1 {
			out[i].MoM = growth(r.Revenue, sorted[i-1].Revenue)
		}
		if pos := i - start; pos >= yoyLag {
			out[i].YoY = growth(r.Revenue, sorted[i-yoyLag].Revenue)
		}
	}
	return out
}

// growth returns cur/prev - 1, null when either is null or prev is zero.
func growth(cur, prev decimal.NullDecimal) decimal.NullDecimal {
	if !cur.Valid || !prev.Valid || prev.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(cur.Decimal.Div(prev.Decimal).Sub(decimal.NewFromInt(1)))
}

// Table returns the base rows, without growth.
func (e Enriched) Table() Table {
	t := make(Table, len(e))
	for i, r := range e {
		t[i] = r.Row
	}
	return t
}

// Ticker returns the rows of a single ticker.
func (e Enriched) Ticker(ticker string) Enriched {
	out := Enriched{}
	for _, r := range e {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the last row of each ticker, in ticker order.
func (e Enriched) Latest() Enriched {
	out := Enriched{}
	for i, r := range e {
		if i+1 == len(e) || e[i+1].Ticker != r.Ticker {
			out = append(out, r)
		}
	}
	return out
}

// Last returns at most the n last rows.
func (e Enriched) Last(n int) Enriched {
	if n >= len(e) {
		return e
	}
	return e[len(e)-n:]
}
