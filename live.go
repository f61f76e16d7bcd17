package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/revenue/date"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultEpoch is the first month fetched from the provider by default.
var DefaultEpoch = date.New(2023, time.January, 1)

// LookbackStart returns the first day of the month, years before today.
func LookbackStart(today date.Date, years int) date.Date {
	return today.StartOfMonth().AddMonths(-12 * years)
}

// Record is a provider row, keyed by the provider's own field names.
type Record map[string]any

// Source is the provider capability: monthly revenue rows of a ticker from start.
type Source interface {
	MonthRevenue(ctx context.Context, ticker string, start date.Date) ([]Record, error)
}

// LiveFetcher returns the revenue table of a single ticker.
type LiveFetcher interface {
	Fetch(ctx context.Context, ticker string) (Table, error)
}

// Fetcher retrieves revenue tables from a Source.
type Fetcher struct {
	source   Source
	registry *Registry
	start    date.Date
	memo     *Memo[Table]
	logger   logrus.FieldLogger
}

var _ LiveFetcher = (*Fetcher)(nil)

// NewFetcher returns a fetcher that backfills names from reg.
//
// Accepted options: WithStart, WithLookback, WithFetchTTL, WithClock, WithLogger.
func NewFetcher(src Source, reg *Registry, opts ...Option) *Fetcher {
	o := newOptions(opts)
	memo := NewMemo[Table](o.fetchTTL)
	memo.SetClock(o.now)
	return &Fetcher{
		source:   src,
		registry: reg,
		start:    o.start,
		memo:     memo,
		logger:   o.logger,
	}
}

// Start returns the first month fetched.
func (f *Fetcher) Start() date.Date { return f.start }

// Fetch returns the revenue rows of ticker in ascending date order.
//
// Provider field names are normalized, missing names are filled from the
// registry. An empty answer is an empty table, not an error.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) (Table, error) {
	return f.memo.Do(NewKey("fetch", ticker, f.start), func() (Table, error) {
		records, err := f.source.MonthRevenue(ctx, ticker, f.start)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch monthly revenue of %q: %w", ticker, err)
		}
		t := make(Table, 0, len(records))
		for _, rec := range records {
			t = append(t, normalizeRecord(rec, ticker))
		}
		t = t.FillNames(f.registry).SortByDate()
		f.logger.WithFields(logrus.Fields{"ticker": ticker, "from": f.start, "rows": len(t)}).Debug("fetched monthly revenue")
		return t, nil
	})
}

// recordFields maps provider field names, lower cased, to row columns.
var recordFields = map[string]string{
	"stock_id":   "ticker",
	"ticker":     "ticker",
	"stock_name": "name",
	"name":       "name",
	"date":       "date",
	"revenue":    "revenue",
}

// normalizeRecord converts a provider record into a row. Missing columns are
// null, except the ticker that defaults to the requested one.
func normalizeRecord(rec Record, ticker string) Row {
	row := Row{Ticker: ticker}
	for k, v := range rec {
		switch recordFields[normalizeHeader(k)] {
		case "ticker":
			if s := stringValue(v); s != "" {
				row.Ticker = s
			}
		case "name":
			row.Name = stringValue(v)
		case "date":
			row.Date = parseCellDate(stringValue(v))
		case "revenue":
			row.Revenue = decimalValue(v)
		}
	}
	return row
}

func stringValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func decimalValue(v any) decimal.NullDecimal {
	switch v := v.(type) {
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(v))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v))
	default:
		return parseDecimal(stringValue(v))
	}
}
