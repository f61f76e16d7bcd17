package renderer

import (
	"io/fs"
	"math"
	"strings"
	"testing"
	"text/template"

	"github.com/etnz/revenue"
	"github.com/etnz/revenue/date"
	"github.com/shopspring/decimal"
)

func D(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

// monthly returns an enriched series of ticker starting in January 2024.
func monthly(ticker string, revenues ...string) revenue.Enriched {
	t := revenue.Table{}
	for i, rev := range revenues {
		t = append(t, revenue.Row{Ticker: ticker, Date: date.New(2024, 1, 1).AddMonths(i), Revenue: D(rev)})
	}
	return revenue.Enrich(t)
}

var reg = revenue.NewRegistry(
	revenue.Entry{Ticker: "3533", Name: "嘉澤", Sector: "連接器"},
	revenue.Entry{Ticker: "2392", Name: "正崴", Sector: "連接器"},
)

func TestTemplatesParse(t *testing.T) {
	files, err := fs.Glob(templates, "*.md")
	if err != nil || len(files) == 0 {
		t.Fatalf("no templates found: %v", err)
	}
	for _, f := range files {
		content, err := fs.ReadFile(templates, f)
		if err != nil {
			t.Fatalf("failed to read template %q: %v", f, err)
		}
		if _, err := template.New(f).Parse(string(content)); err != nil {
			t.Errorf("failed to parse template %q: %v", f, err)
		}
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{M(D("1234.5"), "USD"), "$1,234.50"},
		{M(D("0.004"), "USD"), "$0.00"},
		{M(decimal.NullDecimal{}, "USD"), "—"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Money.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		p    Percent
		want string
	}{
		{P(D("0.1")), "+10.00%"},
		{P(D("-0.0525")), "-5.25%"},
		{P(D("0")), "0.00%"},
		{P(decimal.NullDecimal{}), "—"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Percent.String() = %q, want %q", got, tt.want)
		}
	}
	if !math.IsNaN(P(decimal.NullDecimal{}).Float()) {
		t.Errorf("Percent.Float() of null is not NaN")
	}
}

func TestPlot(t *testing.T) {
	if got := plot([]float64{1}, ""); got != "" {
		t.Errorf("plot() of a single point = %q, want none", got)
	}
	if got := plot([]float64{nan, 1, nan}, ""); got != "" {
		t.Errorf("plot() of a single defined point = %q, want none", got)
	}
	if got := plot([]float64{1, 2, 3}, "caption"); !strings.Contains(got, "caption") {
		t.Errorf("plot() = %q, want a captioned chart", got)
	}
}

func TestRenderOverview(t *testing.T) {
	e := revenue.Enrich(append(monthly("3533", "100", "110", "121").Table(), monthly("2392", "50").Table()...))
	o := NewOverview("連接器", reg, e, "USD")

	if len(o.Rows) != 2 {
		t.Fatalf("NewOverview() rows = %d, want 2", len(o.Rows))
	}
	if got := o.Rows[1]; got.Ticker != "3533" || got.Name != "嘉澤" || got.Month != "2024-03" || got.MoM.String() != "+10.00%" || got.YoY.String() != "—" {
		t.Errorf("NewOverview() row = %+v", got)
	}
	if len(o.Charts) != 1 {
		t.Errorf("NewOverview() charts = %d, want 1 (2392 has a single month)", len(o.Charts))
	}

	out := RenderOverview(o)
	for _, want := range []string{"# 連接器", "| 3533 | 嘉澤 | 2024-03 | $121.00 | +10.00% | — |", "| 2392 | 正崴 | 2024-01 |", "## 3533 嘉澤", "```"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderOverview() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderOverview_Empty(t *testing.T) {
	out := RenderOverview(NewOverview("光通訊", reg, revenue.Enriched{}, ""))
	if !strings.Contains(out, "No revenue data for sector 光通訊") {
		t.Errorf("RenderOverview() = %q, want the empty state", out)
	}
	if strings.Contains(out, "| Ticker |") {
		t.Errorf("RenderOverview() of an empty sector renders a table")
	}
}

func TestRenderDrilldown(t *testing.T) {
	revs := make([]string, 14)
	for i := range revs {
		revs[i] = "100"
	}
	revs[13] = "150"
	d := NewDrilldown("3533", reg, monthly("3533", revs...), "USD")

	if d.Sector != "連接器" || d.Month != "2025-02" {
		t.Errorf("NewDrilldown() = %s %s, want 連接器 2025-02", d.Sector, d.Month)
	}
	if d.MoM.String() != "+50.00%" || d.YoY.String() != "+50.00%" {
		t.Errorf("NewDrilldown() MoM, YoY = %v, %v, want +50.00%%", d.MoM, d.YoY)
	}
	if len(d.Rows) != 14 {
		t.Fatalf("NewDrilldown() rows = %d, want 14", len(d.Rows))
	}
	// drill-down rows share the overview row shape
	if got := d.Rows[13]; got.Ticker != "3533" || got.Month != "2025-02" || got.MoM.String() != "+50.00%" || got.Revenue.String() != "$150.00" {
		t.Errorf("NewDrilldown() last row = %+v", got)
	}

	out := RenderDrilldown(d)
	for _, want := range []string{"# 3533 嘉澤", "Sector: 連接器", "| 2025-02 | $150.00 | +50.00% | +50.00% |", "## Revenue", "## YoY", "## MoM", "## Data"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDrilldown() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDrilldown_Unknown(t *testing.T) {
	d := NewDrilldown("9999", nil, monthly("3533", "1", "2"), "")
	if d.MoM.String() != "—" || d.Revenue.String() != "—" {
		t.Errorf("NewDrilldown() of an unknown ticker = %v, %v, want nulls", d.MoM, d.Revenue)
	}
	if out := RenderDrilldown(d); !strings.Contains(out, "No revenue data for 9999") {
		t.Errorf("RenderDrilldown() = %q, want the empty state", out)
	}
}
