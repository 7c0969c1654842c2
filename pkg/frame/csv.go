package frame

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/series"
)

// ReadCSV parses CSV from r into a frame. The first record is the header.
// Column types are inferred from the values: int32 when every non-empty
// cell parses as a 32-bit integer, then float64, then bool, else string.
// Empty cells become nulls.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read CSV")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrorTypeParse, "CSV input has no header")
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*series.Series, len(header))
	for c, name := range header {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if c < len(rec) {
				cells[i] = rec[c]
			}
		}
		col, err := inferColumn(name, cells)
		if err != nil {
			return nil, err
		}
		cols[c] = col
	}
	return New(cols...)
}

// inferColumn picks the narrowest type that fits every non-empty cell.
func inferColumn(name string, cells []string) (*series.Series, error) {
	validity := make([]bool, len(cells))
	isInt32, isFloat64, isBool := true, true, true
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		validity[i] = true
		if _, err := strconv.ParseInt(cell, 10, 32); err != nil {
			isInt32 = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			isFloat64 = false
		}
		if _, err := strconv.ParseBool(cell); err != nil {
			isBool = false
		}
	}

	switch {
	case isInt32:
		values := make([]int32, len(cells))
		for i, cell := range cells {
			if validity[i] {
				v, _ := strconv.ParseInt(cell, 10, 32)
				values[i] = int32(v)
			}
		}
		return series.NewInt32(name, values, validity)
	case isFloat64:
		values := make([]float64, len(cells))
		for i, cell := range cells {
			if validity[i] {
				values[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return series.NewFloat64(name, values, validity)
	case isBool:
		values := make([]bool, len(cells))
		for i, cell := range cells {
			if validity[i] {
				values[i], _ = strconv.ParseBool(cell)
			}
		}
		return series.NewBool(name, values, validity)
	default:
		values := make([]string, len(cells))
		copy(values, cells)
		return series.NewString(name, values, validity)
	}
}

// WriteCSV writes the frame to w with a header row. Null values are
// written as empty cells.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.ColumnNames()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeParse, "failed to write CSV header")
	}
	record := make([]string, len(f.columns))
	for i := 0; i < f.rows; i++ {
		for c, col := range f.columns {
			if col.IsValid(i) {
				record[c] = col.StringAt(i)
			} else {
				record[c] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeParse, "failed to write CSV row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeParse, "failed to flush CSV output")
	}
	return nil
}
