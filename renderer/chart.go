package renderer

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/shopspring/decimal"
)

var nan = math.NaN()

// chartHeight is the number of lines of a chart.
const chartHeight = 10

// Chart is a titled ASCII line chart.
type Chart struct {
	Title string
	Plot  string
}

// plot draws series, NaN values are gaps. It returns "" when fewer than two
// points are defined.
func plot(series []float64, caption string) string {
	defined := 0
	for _, v := range series {
		if !math.IsNaN(v) {
			defined++
		}
	}
	if defined < 2 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(chartHeight),
		asciigraph.Precision(1),
		asciigraph.Caption(caption),
	)
}

// millions converts a revenue to millions, NaN when null.
func millions(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return nan
	}
	return v.Decimal.Shift(-6).InexactFloat64()
}
