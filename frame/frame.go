// Package frame implements a small ordered-column table used to reshape
// vendor feed files before they are loaded to the warehouse.
// Cell values are interface{} where nil represents a null.
package frame

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
)

// MissingColumnsError is returned when a projection or lookup needs columns
// that the input file does not carry.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing from input: %v", strings.Join(e.Columns, ", "))
}

// Frame is an ordered set of named columns over rows of raw cell values.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]interface{}
}

// New creates an empty Frame with the given column names.
func New(cols []string) *Frame {
	f := &Frame{cols: append([]string(nil), cols...)}
	f.reindex()
	return f
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		f.index[c] = i
	}
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Missing returns the subset of names not present as columns, in the order given.
func (f *Frame) Missing(names []string) []string {
	var missing []string
	for _, n := range names {
		if !f.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// AppendRow adds one row. Short rows are padded with nils and long rows are
// truncated, matching the permissive handling of jagged vendor exports.
func (f *Frame) AppendRow(vals []interface{}) {
	row := make([]interface{}, len(f.cols))
	copy(row, vals)
	f.rows = append(f.rows, row)
}

// Value returns the cell at the given row for the named column.
func (f *Frame) Value(row int, col string) (interface{}, error) {
	i, ok := f.index[col]
	if !ok {
		return nil, &MissingColumnsError{Columns: []string{col}}
	}
	if row < 0 || row >= len(f.rows) {
		return nil, errors.Errorf("row %v out of range (%v rows)", row, len(f.rows))
	}
	return f.rows[row][i], nil
}

// Set writes the cell at the given row for the named column.
func (f *Frame) Set(row int, col string, v interface{}) error {
	i, ok := f.index[col]
	if !ok {
		return &MissingColumnsError{Columns: []string{col}}
	}
	if row < 0 || row >= len(f.rows) {
		return errors.Errorf("row %v out of range (%v rows)", row, len(f.rows))
	}
	f.rows[row][i] = v
	return nil
}

// Apply replaces every cell of the named column with fn(cell).
func (f *Frame) Apply(col string, fn func(v interface{}) interface{}) error {
	i, ok := f.index[col]
	if !ok {
		return &MissingColumnsError{Columns: []string{col}}
	}
	for r := range f.rows {
		f.rows[r][i] = fn(f.rows[r][i])
	}
	return nil
}

// AddColumn appends a new column filled with the supplied value.
func (f *Frame) AddColumn(name string, fill interface{}) error {
	if f.HasColumn(name) {
		return errors.Errorf("column %q already exists", name)
	}
	f.cols = append(f.cols, name)
	f.reindex()
	for r := range f.rows {
		f.rows[r] = append(f.rows[r], fill)
	}
	return nil
}

// NormalizeHeaders rewrites every column name through fn, keeping order.
func (f *Frame) NormalizeHeaders(fn func(string) string) {
	for i, c := range f.cols {
		f.cols[i] = fn(c)
	}
	f.reindex()
}

// Rename applies the ordered old->new name map to column headers.
// Names absent from the frame are ignored.
func (f *Frame) Rename(m *om.OrderedMap) {
	iter := m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		if i, found := f.index[kv.Key.(string)]; found {
			f.cols[i] = kv.Value.(string)
		}
	}
	f.reindex()
}

// SetColumns renames all columns positionally. The incoming file must already
// carry its columns in the documented source order; the count check is the only
// guard we have against silently mislabelled data.
func (f *Frame) SetColumns(cols []string) error {
	if len(cols) != len(f.cols) {
		return errors.Errorf("positional rename expects %v columns but frame has %v", len(cols), len(f.cols))
	}
	f.cols = append([]string(nil), cols...)
	f.reindex()
	return nil
}

// Project returns a new Frame holding only the named columns, in the order
// given. All required columns must exist.
func (f *Frame) Project(cols []string) (*Frame, error) {
	if missing := f.Missing(cols); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	out := New(cols)
	src := make([]int, len(cols))
	for i, c := range cols {
		src[i] = f.index[c]
	}
	for _, row := range f.rows {
		vals := make([]interface{}, len(cols))
		for i, s := range src {
			vals[i] = row[s]
		}
		out.rows = append(out.rows, vals)
	}
	return out, nil
}
