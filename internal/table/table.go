// Package table holds the in-memory tabular model: an ordered set of named,
// kind-tagged columns sharing one row count.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column is a named sequence of values of a single kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn builds a column and checks every non-null value against kind.
// A KindUnknown column may only hold nulls.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		if v.Kind() != kind {
			return nil, fmt.Errorf("column %q row %d: %s value in %s column", name, i, v.Kind(), kind)
		}
	}
	return &Column{Name: name, Kind: kind, Values: values}, nil
}

// Len returns the number of values.
func (c *Column) Len() int { return len(c.Values) }

// NullCount returns the number of null values.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// AllNull reports whether the column has no non-null value.
func (c *Column) AllNull() bool { return c.NullCount() == len(c.Values) }

// Distinct returns the number of distinct non-null values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		seen[v.Key()] = struct{}{}
	}
	return len(seen)
}

// Floats returns the non-null numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	vals := make([]Value, len(c.Values))
	copy(vals, c.Values)
	return &Column{Name: c.Name, Kind: c.Kind, Values: vals}
}

// Table is an ordered sequence of columns with a shared row count.
type Table struct {
	cols []*Column
	rows int
}

// ErrShape is returned when columns disagree on length or names collide.
var ErrShape = errors.New("invalid table shape")

// New assembles a table. All columns must have the same length and unique names.
func New(cols ...*Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	return NewWithRows(rows, cols...)
}

// NewWithRows assembles a table with an explicit row count, which also
// defines the shape of a table without columns.
func NewWithRows(rows int, cols ...*Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("%w: nil column", ErrShape)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, c.Name, c.Len(), rows)
		}
	}
	return &Table{cols: cols, rows: rows}, nil
}

// MustNew is New for fixtures; it panics on shape errors.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return t.rows, len(t.cols) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) *Column {
	for _, c := range t.cols {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	return &Table{cols: cols, rows: t.rows}
}

// Drop returns a copy without the named columns; order of the rest is kept.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := drop[c.Name]; ok {
			continue
		}
		cols = append(cols, c.Clone())
	}
	return &Table{cols: cols, rows: t.rows}
}

// KeepRows returns a copy holding only rows where keep[i] is true, in order.
func (t *Table) KeepRows(keep []bool) *Table {
	n := 0
	for i := 0; i < t.rows && i < len(keep); i++ {
		if keep[i] {
			n++
		}
	}
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		vals := make([]Value, 0, n)
		for i, v := range c.Values {
			if i < len(keep) && keep[i] {
				vals = append(vals, v)
			}
		}
		cols[j] = &Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return &Table{cols: cols, rows: n}
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > t.rows {
		n = t.rows
	}
	keep := make([]bool, t.rows)
	for i := 0; i < n; i++ {
		keep[i] = true
	}
	return t.KeepRows(keep)
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Values[i]
	}
	return out
}

// RowKey is a canonical key of row i for full-row equality. Cell keys are
// quoted so text containing the separator cannot merge two cells.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.cols {
		if j > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(c.Values[i].Key()))
	}
	return b.String()
}

// DuplicateMask marks every row that fully equals an earlier row.
func (t *Table) DuplicateMask() []bool {
	mask := make([]bool, t.rows)
	seen := make(map[string]struct{}, t.rows)
	for i := 0; i < t.rows; i++ {
		k := t.RowKey(i)
		if _, ok := seen[k]; ok {
			mask[i] = true
			continue
		}
		seen[k] = struct{}{}
	}
	return mask
}

// Replace returns a copy where the column with the same name is swapped for c.
func (t *Table) Replace(c *Column) *Table {
	out := t.Clone()
	for i, old := range out.cols {
		if old.Name == c.Name {
			out.cols[i] = c
		}
	}
	return out
}
