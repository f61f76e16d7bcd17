package renderer

import (
	"fmt"

	"github.com/etnz/revenue"
)

// Overview is the sector level report: the latest month of every ticker and
// their revenue trends.
type Overview struct {
	Sector   string
	Currency string
	Rows     []Row
	Charts   []Chart
}

// Row is one month of a ticker: the latest one in an Overview, any in a
// Drilldown.
type Row struct {
	Ticker  string
	Name    string
	Month   string
	Revenue Money
	MoM     Percent
	YoY     Percent
}

// NewOverview builds the overview of sector from its enriched table.
// Missing names are taken from reg, which can be nil.
func NewOverview(sector string, reg *revenue.Registry, e revenue.Enriched, currency string) *Overview {
	if currency == "" {
		currency = DefaultCurrency
	}
	o := &Overview{Sector: sector, Currency: currency}
	for _, r := range e.Latest() {
		o.Rows = append(o.Rows, Row{
			Ticker:  r.Ticker,
			Name:    displayName(r.Row, reg),
			Month:   month(r.Row),
			Revenue: M(r.Revenue, currency),
			MoM:     P(r.MoM),
			YoY:     P(r.YoY),
		})

		rows := e.Ticker(r.Ticker)
		series := make([]float64, len(rows))
		for i, row := range rows {
			series[i] = millions(row.Revenue)
		}
		if p := plot(series, fmt.Sprintf("revenue, millions %s", currency)); p != "" {
			o.Charts = append(o.Charts, Chart{Title: fmt.Sprintf("%s %s", r.Ticker, displayName(r.Row, reg)), Plot: p})
		}
	}
	return o
}

// RenderOverview renders the overview to a markdown string.
func RenderOverview(o *Overview) string {
	partials := map[string]string{
		"overview_table": "overview_table.md",
		"charts":         "charts.md",
	}
	return renderTemplate("overview", "overview.md", partials, o)
}

func displayName(r revenue.Row, reg *revenue.Registry) string {
	if r.Name != "" {
		return r.Name
	}
	name, _ := reg.Name(r.Ticker)
	return name
}

func month(r revenue.Row) string {
	if r.Date.IsZero() {
		return null
	}
	return fmt.Sprintf("%04d-%02d", r.Date.Year(), int(r.Date.Month()))
}
