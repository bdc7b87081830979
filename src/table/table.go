// Package table loads the CSV summaries written by the evaluation flow into
// named columns. Identifier columns stay strings, every other column is parsed
// as float64.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Table is an immutable set of named columns sharing one row count.
type Table struct {
	path    string
	header  []string
	ids     map[string][]string
	numeric map[string][]float64
	rows    int
}

// Load reads a comma separated file with one header row. Header names listed in
// identifiers are kept as string columns.
func Load(path string, identifiers ...string) (*Table, error) {
	return LoadDelimited(path, ',', identifiers...)
}

// LoadDelimited is Load with an explicit field delimiter.
func LoadDelimited(path string, delim rune, identifiers ...string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Parse(f, path, delim, identifiers...)
}

// Parse builds a Table from r. name is only used in error messages.
func Parse(r io.Reader, name string, delim rune, identifiers ...string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.TrimLeadingSpace = true
	// ragged rows are reported as SchemaError below with the row number
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Path: name, Reason: "missing header row"}
	}
	if err != nil {
		return nil, &SchemaError{Path: name, Reason: "unreadable header", Err: err}
	}

	t := &Table{
		path:    name,
		header:  make([]string, len(header)),
		ids:     map[string][]string{},
		numeric: map[string][]float64{},
	}
	isID := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		isID[id] = true
	}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &SchemaError{Path: name, Reason: "empty header name at position " + strconv.Itoa(i+1)}
		}
		if seen[h] {
			return nil, &SchemaError{Path: name, Column: h, Reason: "duplicate header name"}
		}
		seen[h] = true
		t.header[i] = h
		if isID[h] {
			t.ids[h] = []string{}
		} else {
			t.numeric[h] = []float64{}
		}
	}
	for _, id := range identifiers {
		if !seen[id] {
			return nil, &SchemaError{Path: name, Column: id, Reason: "identifier column not in header"}
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		row := t.rows + 1
		if err != nil {
			return nil, &SchemaError{Path: name, Row: row, Reason: "unreadable row", Err: err}
		}
		if len(rec) != len(t.header) {
			return nil, &SchemaError{Path: name, Row: row,
				Reason: "expected " + strconv.Itoa(len(t.header)) + " fields, got " + strconv.Itoa(len(rec))}
		}
		for i, cell := range rec {
			col := t.header[i]
			cell = strings.TrimSpace(cell)
			if isID[col] {
				t.ids[col] = append(t.ids[col], cell)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &SchemaError{Path: name, Column: col, Row: row, Reason: "not a number", Err: err}
			}
			t.numeric[col] = append(t.numeric[col], v)
		}
		t.rows++
	}
	return t, nil
}

// Path returns the file the table was loaded from.
func (t *Table) Path() string { return t.path }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Header returns all column names in file order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// IdentifierNames returns the identifier columns in header order.
func (t *Table) IdentifierNames() []string {
	var out []string
	for _, h := range t.header {
		if _, ok := t.ids[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

// NumericNames returns the numeric columns in header order.
func (t *Table) NumericNames() []string {
	var out []string
	for _, h := range t.header {
		if _, ok := t.numeric[h]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Column returns a copy of a numeric column.
func (t *Table) Column(name string) ([]float64, error) {
	v, ok := t.numeric[name]
	if !ok {
		if _, isID := t.ids[name]; isID {
			return nil, &SchemaError{Path: t.path, Column: name, Reason: "identifier column is not numeric"}
		}
		return nil, &SchemaError{Path: t.path, Column: name, Reason: "column not in header"}
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// Identifier returns a copy of an identifier column.
func (t *Table) Identifier(name string) ([]string, error) {
	v, ok := t.ids[name]
	if !ok {
		return nil, &SchemaError{Path: t.path, Column: name, Reason: "identifier column not in header"}
	}
	out := make([]string, len(v))
	copy(out, v)
	return out, nil
}

// Select returns a table holding only the given rows, in the given order.
func (t *Table) Select(rows []int) (*Table, error) {
	sub := &Table{
		path:    t.path,
		header:  t.header,
		ids:     make(map[string][]string, len(t.ids)),
		numeric: make(map[string][]float64, len(t.numeric)),
		rows:    len(rows),
	}
	for _, r := range rows {
		if r < 0 || r >= t.rows {
			return nil, &SchemaError{Path: t.path, Row: r + 1, Reason: "row index out of range"}
		}
	}
	for name, col := range t.ids {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = col[r]
		}
		sub.ids[name] = out
	}
	for name, col := range t.numeric {
		out := make([]float64, len(rows))
		for i, r := range rows {
			out[i] = col[r]
		}
		sub.numeric[name] = out
	}
	return sub, nil
}

// Where returns the rows whose identifier column equals value.
func (t *Table) Where(identifier, value string) (*Table, error) {
	ids, err := t.Identifier(identifier)
	if err != nil {
		return nil, err
	}
	var rows []int
	for i, v := range ids {
		if v == value {
			rows = append(rows, i)
		}
	}
	return t.Select(rows)
}
