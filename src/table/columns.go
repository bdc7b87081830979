package table

import "fmt"

// Columns is a set of numeric columns resolved once against a table header.
type Columns struct {
	cols map[string][]float64
}

// Resolve looks up every name up front and fails on the first one missing from
// the header, so later access by name cannot fail.
func (t *Table) Resolve(names ...string) (Columns, error) {
	c := Columns{cols: make(map[string][]float64, len(names))}
	for _, n := range names {
		v, err := t.Column(n)
		if err != nil {
			return Columns{}, err
		}
		c.cols[n] = v
	}
	return c, nil
}

// Get returns a resolved column. Asking for a name that was not passed to
// Resolve is a programming error and panics.
func (c Columns) Get(name string) []float64 {
	v, ok := c.cols[name]
	if !ok {
		panic(fmt.Sprintf("table: column %q was not resolved", name))
	}
	return v
}
