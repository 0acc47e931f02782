package models

import (
	"math"
	"time"
)

// Missing is the in-memory representation of an absent observation.
// NaN propagates through row-wise arithmetic, which is exactly the
// null-propagation contract of the calculators.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether v represents an absent observation.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Panel is the unified date-indexed table: one row per distinct calendar
// date, one column per series plus derived columns. Dates are unique and
// strictly ascending. A Panel is owned by a single pipeline run; calculators
// add or overwrite columns, never delete.
type Panel struct {
	dates []time.Time
	order []string
	data  map[string][]float64
}

// NewPanel creates an empty panel over the given dates. The caller must
// supply dates already deduplicated and sorted ascending.
func NewPanel(dates []time.Time) *Panel {
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Panel{
		dates: d,
		data:  make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (p *Panel) Len() int { return len(p.dates) }

// Dates returns the date index.
func (p *Panel) Dates() []time.Time { return p.dates }

// Columns returns column names in insertion order.
func (p *Panel) Columns() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// HasColumn reports whether the column exists.
func (p *Panel) HasColumn(name string) bool {
	_, ok := p.data[name]
	return ok
}

// Column returns the values of a column, NaN marking missing observations.
// The returned slice is the panel's own storage; callers that mutate it
// mutate the panel.
func (p *Panel) Column(name string) ([]float64, bool) {
	v, ok := p.data[name]
	return v, ok
}

// SetColumn adds or overwrites a column. Values length must match the
// date index.
func (p *Panel) SetColumn(name string, values []float64) {
	if len(values) != len(p.dates) {
		panic("panel: column length does not match date index")
	}
	if _, exists := p.data[name]; !exists {
		p.order = append(p.order, name)
	}
	p.data[name] = values
}

// At returns the value of column name at row i, or NaN when the column
// does not exist.
func (p *Panel) At(name string, i int) float64 {
	col, ok := p.data[name]
	if !ok {
		return Missing()
	}
	return col[i]
}

// Clone returns a deep copy of the panel.
func (p *Panel) Clone() *Panel {
	c := NewPanel(p.dates)
	for _, name := range p.order {
		vals := make([]float64, len(p.data[name]))
		copy(vals, p.data[name])
		c.SetColumn(name, vals)
	}
	return c
}
