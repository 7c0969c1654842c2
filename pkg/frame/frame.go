// Package frame provides the tabular container over typed series. A Frame
// holds an ordered set of named columns sharing one row count; the group-by
// entry point delegates to the adaptive aggregation engine.
package frame

import (
	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/groupby"
	"github.com/quiverdb/quiver/pkg/series"
)

// Frame is an ordered collection of named columns with a shared row count.
// Column order is insertion order and is preserved by every operation.
type Frame struct {
	columns []*series.Series
	byName  map[string]int
	rows    int
}

// New creates a frame from the given columns. Every column must carry a
// unique non-empty name and the same row count.
func New(columns ...*series.Series) (*Frame, error) {
	f := &Frame{byName: make(map[string]int, len(columns))}
	for _, col := range columns {
		if err := f.addColumn(col); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) addColumn(col *series.Series) error {
	if col.Name() == "" {
		return errors.New(errors.ErrorTypeInvalidOperation, "column name must not be empty")
	}
	if _, exists := f.byName[col.Name()]; exists {
		return errors.Newf(errors.ErrorTypeInvalidOperation,
			"duplicate column %q", col.Name())
	}
	if len(f.columns) == 0 {
		f.rows = col.Len()
	} else if col.Len() != f.rows {
		return errors.Newf(errors.ErrorTypeInvalidOperation,
			"column %q has %d rows, frame has %d", col.Name(), col.Len(), f.rows)
	}
	f.byName[col.Name()] = len(f.columns)
	f.columns = append(f.columns, col)
	return nil
}

// NumRows returns the shared row count.
func (f *Frame) NumRows() int { return f.rows }

// NumColumns returns the column count.
func (f *Frame) NumColumns() int { return len(f.columns) }

// ColumnNames returns the column names in frame order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name()
	}
	return names
}

// Column returns the named column.
func (f *Frame) Column(name string) (*series.Series, error) {
	i, ok := f.byName[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeColumnNotFound, "column %q not found", name)
	}
	return f.columns[i], nil
}

// ColumnAt returns the column at position i in frame order.
func (f *Frame) ColumnAt(i int) (*series.Series, error) {
	if i < 0 || i >= len(f.columns) {
		return nil, errors.Newf(errors.ErrorTypeColumnNotFound,
			"column index %d out of range [0,%d)", i, len(f.columns))
	}
	return f.columns[i], nil
}

// Select returns a new frame containing only the named columns, in the
// requested order. The columns share buffers with the receiver.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*series.Series, 0, len(names))
	for _, name := range names {
		col, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// WithColumn returns a new frame with the column appended (or replacing an
// existing column of the same name).
func (f *Frame) WithColumn(col *series.Series) (*Frame, error) {
	cols := make([]*series.Series, 0, len(f.columns)+1)
	replaced := false
	for _, c := range f.columns {
		if c.Name() == col.Name() {
			cols = append(cols, col)
			replaced = true
		} else {
			cols = append(cols, c)
		}
	}
	if !replaced {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Gather returns a new frame containing the given rows, in order, from
// every column.
func (f *Frame) Gather(indices []int) (*Frame, error) {
	cols := make([]*series.Series, len(f.columns))
	for i, col := range f.columns {
		cols[i] = col.Gather(indices)
	}
	return New(cols...)
}

// DropNulls returns a new frame keeping only rows where every column is
// valid.
func (f *Frame) DropNulls() (*Frame, error) {
	indices := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		keep := true
		for _, col := range f.columns {
			if !col.IsValid(i) {
				keep = false
				break
			}
		}
		if keep {
			indices = append(indices, i)
		}
	}
	return f.Gather(indices)
}

// GroupBy aggregates the frame by the named group column. Each requested
// aggregation contributes one output column named "<column>_<function>"
// ("count" aggregations over the group column itself are named "count").
// Output rows are ordered by ascending group key on every strategy.
func (f *Frame) GroupBy(groupColumn string, aggs []groupby.Aggregation) (*Frame, error) {
	return f.GroupByWith(groupby.DefaultEngine(), groupColumn, aggs)
}

// GroupByWith is GroupBy with an explicit engine, letting callers supply
// tuned thresholds, a private pool, or a logger.
func (f *Frame) GroupByWith(engine *groupby.Engine, groupColumn string, aggs []groupby.Aggregation) (*Frame, error) {
	keyCol, err := f.Column(groupColumn)
	if err != nil {
		return nil, err
	}
	if len(aggs) == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidOperation,
			"at least one aggregation is required")
	}

	valueCols := make([]*series.Series, len(aggs))
	for i, agg := range aggs {
		col, err := f.Column(agg.Column)
		if err != nil {
			return nil, err
		}
		valueCols[i] = col
	}

	out, err := engine.Aggregate(keyCol, valueCols, aggs)
	if err != nil {
		return nil, err
	}
	return New(out...)
}
