// Package features derives engineered model inputs from raw tabular data.
//
// The same derivations run when preparing training data and when scoring a
// single booking request, so both paths go through Engineer.
package features

import (
	"fmt"

	"github.com/okian/fairway/internal/domain/model"
)

// Frame is a small column-oriented table of float64 values.
// Column order is preserved; every column has Len() values.
type Frame struct {
	columns []string
	data    map[string][]float64
	rows    int
}

// NewFrame builds a frame from row-major values laid out in columns order.
func NewFrame(columns []string, rows ...[]float64) (*Frame, error) {
	f := &Frame{
		columns: make([]string, 0, len(columns)),
		data:    make(map[string][]float64, len(columns)),
		rows:    len(rows),
	}
	for _, name := range columns {
		if _, ok := f.data[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		f.columns = append(f.columns, name)
		f.data[name] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrShapeMismatch, i, len(row), len(columns))
		}
		for j, name := range columns {
			f.data[name][i] = row[j]
		}
	}
	return f, nil
}

// FromVectors builds a frame with the raw feature columns, one row per vector.
func FromVectors(vectors ...model.FeatureVector) *Frame {
	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		rows[i] = v.Values()
	}
	// canonical columns are unique and rows come from Values, so this cannot fail
	f, _ := NewFrame(model.FeatureColumns(), rows...)
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	values, ok := f.data[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, true
}

// SetColumn replaces the named column, appending it when absent.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != f.rows {
		return fmt.Errorf("%w: %s has %d values, frame has %d rows", ErrShapeMismatch, name, len(values), f.rows)
	}
	if _, ok := f.data[name]; !ok {
		f.columns = append(f.columns, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	f.data[name] = col
	return nil
}

// Row returns row i with values ordered by columns.
func (f *Frame) Row(i int, columns []string) ([]float64, error) {
	if i < 0 || i >= f.rows {
		return nil, fmt.Errorf("row %d out of range [0,%d)", i, f.rows)
	}
	out := make([]float64, len(columns))
	for j, name := range columns {
		values, ok := f.data[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		out[j] = values[i]
	}
	return out, nil
}

// Drop returns a copy of the frame without the named columns.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := &Frame{data: make(map[string][]float64, len(f.columns)), rows: f.rows}
	for _, name := range f.columns {
		if _, ok := skip[name]; ok {
			continue
		}
		out.columns = append(out.columns, name)
		out.data[name], _ = f.Column(name)
	}
	return out
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	return f.Drop()
}

// require checks that every named column is present.
func (f *Frame) require(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}
