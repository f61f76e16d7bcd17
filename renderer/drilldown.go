package renderer

import (
	"fmt"

	"github.com/etnz/revenue"
)

// recentMonths is the window the headline growth rates are read from.
const recentMonths = 12

// Drilldown is the report of a single ticker.
type Drilldown struct {
	Ticker   string
	Name     string
	Sector   string
	Currency string

	Month   string // latest month
	Revenue Money
	MoM     Percent
	YoY     Percent

	Charts []Chart
	Rows   []Row
}

// NewDrilldown builds the report of ticker from an enriched table, rows of
// other tickers are ignored. reg can be nil.
func NewDrilldown(ticker string, reg *revenue.Registry, e revenue.Enriched, currency string) *Drilldown {
	if currency == "" {
		currency = DefaultCurrency
	}
	d := &Drilldown{Ticker: ticker, Currency: currency, Revenue: Money{cur: currency}, Month: null}
	d.Name, _ = reg.Name(ticker)
	if reg != nil {
		d.Sector, _ = reg.Sector(ticker)
	}

	rows := e.Ticker(ticker)
	if len(rows) == 0 {
		return d
	}
	if recent := rows.Last(recentMonths); len(recent) > 0 {
		latest := recent[len(recent)-1]
		if latest.Name != "" {
			d.Name = latest.Name
		}
		d.Month = month(latest.Row)
		d.Revenue = M(latest.Revenue, currency)
		d.MoM = P(latest.MoM)
		d.YoY = P(latest.YoY)
	}

	revs := make([]float64, len(rows))
	yoy := make([]float64, len(rows))
	mom := make([]float64, len(rows))
	for i, r := range rows {
		revs[i] = millions(r.Revenue)
		yoy[i] = P(r.YoY).Float()
		mom[i] = P(r.MoM).Float()
		d.Rows = append(d.Rows, Row{
			Ticker:  r.Ticker,
			Name:    r.Name,
			Month:   month(r.Row),
			Revenue: M(r.Revenue, currency),
			MoM:     P(r.MoM),
			YoY:     P(r.YoY),
		})
	}
	for _, c := range []Chart{
		{Title: "Revenue", Plot: plot(revs, fmt.Sprintf("millions %s", currency))},
		{Title: "YoY", Plot: plot(yoy, "%")},
		{Title: "MoM", Plot: plot(mom, "%")},
	} {
		if c.Plot != "" {
			d.Charts = append(d.Charts, c)
		}
	}
	return d
}

// RenderDrilldown renders the ticker report to a markdown string.
func RenderDrilldown(d *Drilldown) string {
	partials := map[string]string{
		"drilldown_summary": "drilldown_summary.md",
		"charts":            "charts.md",
		"drilldown_table":   "drilldown_table.md",
	}
	return renderTemplate("drilldown", "drilldown.md", partials, d)
}
