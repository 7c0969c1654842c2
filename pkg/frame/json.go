package frame

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/quiverdb/quiver/pkg/errors"
)

// Rows materializes the frame as one map per row, with nil for null
// values. Row-wise export only; the engine never operates on this form.
func (f *Frame) Rows() []map[string]interface{} {
	rows := make([]map[string]interface{}, f.rows)
	for i := 0; i < f.rows; i++ {
		row := make(map[string]interface{}, len(f.columns))
		for _, col := range f.columns {
			row[col.Name()] = col.ValueAt(i)
		}
		rows[i] = row
	}
	return rows
}

// WriteJSON streams the frame to w as a JSON array of row objects.
func (f *Frame) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(f.Rows()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeParse, "failed to encode frame as JSON")
	}
	return nil
}

// MarshalJSON implements json.Marshaler over the row-wise form.
func (f *Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Rows())
}
