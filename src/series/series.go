// Package series holds the named numeric sequences plotted by the reports and
// the elementwise arithmetic used to derive them from table columns.
package series

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Series is a labeled sequence of values, one per chart category.
type Series struct {
	Label  string
	Values []float64
	Color  drawing.Color
}

// New copies values into a Series.
func New(label string, values []float64) Series {
	v := make([]float64, len(values))
	copy(v, values)
	return Series{Label: label, Values: v}
}

// Len returns the number of values.
func (s Series) Len() int { return len(s.Values) }

// WithColor returns s drawn in c.
func (s Series) WithColor(c drawing.Color) Series {
	s.Color = c
	return s
}


// DimensionMismatchError reports sequences that should line up but do not.
type DimensionMismatchError struct {
	Context string
	Label   string
	Want    int
	Got     int
}

func (e *DimensionMismatchError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("dimension mismatch in %s: want %d values, got %d", e.Context, e.Want, e.Got)
	}
	return fmt.Sprintf("dimension mismatch in %s: series %q has %d values, want %d", e.Context, e.Label, e.Got, e.Want)
}

func checkLen(op string, want int, parts ...Series) error {
	for _, p := range parts {
		if p.Len() != want {
			return &DimensionMismatchError{Context: op, Label: p.Label, Want: want, Got: p.Len()}
		}
	}
	return nil
}

func zip(op, label string, a, b Series, f func(x, y float64) float64) (Series, error) {
	if err := checkLen(op, a.Len(), b); err != nil {
		return Series{}, err
	}
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = f(a.Values[i], b.Values[i])
	}
	return Series{Label: label, Values: out}, nil
}

// Sum adds parts elementwise. At least one part is required.
func Sum(label string, parts ...Series) (Series, error) {
	if len(parts) == 0 {
		return Series{}, &DimensionMismatchError{Context: "sum " + label, Want: 1, Got: 0}
	}
	if err := checkLen("sum "+label, parts[0].Len(), parts[1:]...); err != nil {
		return Series{}, err
	}
	out := make([]float64, parts[0].Len())
	for _, p := range parts {
		for i, v := range p.Values {
			out[i] += v
		}
	}
	return Series{Label: label, Values: out}, nil
}

// Sub returns a - b.
func Sub(label string, a, b Series) (Series, error) {
	return zip("sub "+label, label, a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b.
func Mul(label string, a, b Series) (Series, error) {
	return zip("mul "+label, label, a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b. Division by zero follows IEEE 754.
func Div(label string, a, b Series) (Series, error) {
	return zip("div "+label, label, a, b, func(x, y float64) float64 { return x / y })
}

// Scale multiplies every value by k.
func Scale(label string, s Series, k float64) Series {
	out := make([]float64, s.Len())
	for i, v := range s.Values {
		out[i] = v * k
	}
	return Series{Label: label, Values: out}
}

// Inverse returns k / s.
func Inverse(label string, s Series, k float64) Series {
	out := make([]float64, s.Len())
	for i, v := range s.Values {
		out[i] = k / v
	}
	return Series{Label: label, Values: out}
}

// Residual returns total minus the sum of parts: the share of total that no
// named part accounts for, so a stack of parts plus the residual always adds
// up to total.
func Residual(label string, total Series, parts ...Series) (Series, error) {
	if len(parts) == 0 {
		return New(label, total.Values), nil
	}
	named, err := Sum(label, parts...)
	if err != nil {
		return Series{}, err
	}
	return Sub(label, total, named)
}

// Totals returns the per-index sum of a stack of series.
func Totals(stack []Series) ([]float64, error) {
	s, err := Sum("totals", stack...)
	if err != nil {
		return nil, err
	}
	return s.Values, nil
}
