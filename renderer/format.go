package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of the revenue figures.
const DefaultCurrency = "TWD"

// null is displayed for missing values.
const null = "—"

// Money is a revenue amount ready to be displayed.
type Money struct {
	value decimal.NullDecimal // as major unit value
	cur   string
}

// M returns the amount v in currency cur.
func M(v decimal.NullDecimal, cur string) Money { return Money{value: v, cur: cur} }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String formats the amount in its currency, rounded to the currency fraction.
func (m Money) String() string {
	if !m.value.Valid {
		return null
	}
	cur := m.currency()
	dec := m.value.Decimal.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// Percent is a growth rate stored as a fraction, 0.1 is displayed +10.00%.
type Percent decimal.NullDecimal

// P returns the percent of a growth fraction.
func P(v decimal.NullDecimal) Percent { return Percent(v) }

// String returns the signed percentage.
func (p Percent) String() string {
	if !p.Valid {
		return null
	}
	v := p.Decimal.Shift(2)
	s := v.StringFixed(2) + "%"
	if v.IsPositive() {
		return "+" + s
	}
	return s
}

// Float returns the percentage as a float, NaN when null.
func (p Percent) Float() float64 {
	if !p.Valid {
		return nan
	}
	return p.Decimal.Shift(2).InexactFloat64()
}
