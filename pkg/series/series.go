// Package series provides the typed column primitive of Quiver. A Series
// is a closed tagged union over five value kinds, each variant owning a
// dense value buffer and a parallel validity buffer (one boolean per row,
// true = non-null). Operations switch exhaustively on the kind so the
// numeric hot paths stay monomorphic and inlinable.
package series

import (
	"strconv"
	"time"

	"github.com/quiverdb/quiver/pkg/errors"
)

// Type identifies the value kind of a Series.
type Type int

const (
	// Int32 is a 32-bit signed integer column
	Int32 Type = iota
	// Float64 is a 64-bit floating-point column
	Float64
	// Bool is a boolean column
	Bool
	// String is a UTF-8 string column
	String
	// DateTime is a timestamp column stored as Unix seconds
	DateTime
)

// String returns the token used for the type in errors and display.
func (t Type) String() string {
	switch t {
	case Int32:
		return "int32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Series is a named, typed column. Exactly one value buffer is populated,
// matching the dtype; the validity buffer always has the same length.
// Buffers are owned by the Series and borrowed immutably by the engine for
// the duration of one operation.
type Series struct {
	name  string
	dtype Type

	int32s    []int32
	float64s  []float64
	bools     []bool
	strings   []string
	datetimes []int64

	validity []bool
}

func fullValidity(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// NewInt32 creates an int32 series. A nil validity marks every row valid.
func NewInt32(name string, values []int32, validity []bool) (*Series, error) {
	if validity == nil {
		validity = fullValidity(len(values))
	} else if len(validity) != len(values) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"validity length %d does not match value length %d", len(validity), len(values))
	}
	return &Series{name: name, dtype: Int32, int32s: values, validity: validity}, nil
}

// NewFloat64 creates a float64 series. A nil validity marks every row valid.
func NewFloat64(name string, values []float64, validity []bool) (*Series, error) {
	if validity == nil {
		validity = fullValidity(len(values))
	} else if len(validity) != len(values) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"validity length %d does not match value length %d", len(validity), len(values))
	}
	return &Series{name: name, dtype: Float64, float64s: values, validity: validity}, nil
}

// NewBool creates a boolean series. A nil validity marks every row valid.
func NewBool(name string, values []bool, validity []bool) (*Series, error) {
	if validity == nil {
		validity = fullValidity(len(values))
	} else if len(validity) != len(values) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"validity length %d does not match value length %d", len(validity), len(values))
	}
	return &Series{name: name, dtype: Bool, bools: values, validity: validity}, nil
}

// NewString creates a string series. A nil validity marks every row valid.
func NewString(name string, values []string, validity []bool) (*Series, error) {
	if validity == nil {
		validity = fullValidity(len(values))
	} else if len(validity) != len(values) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"validity length %d does not match value length %d", len(validity), len(values))
	}
	return &Series{name: name, dtype: String, strings: values, validity: validity}, nil
}

// NewDateTime creates a datetime series from Unix-second timestamps. A nil
// validity marks every row valid.
func NewDateTime(name string, values []int64, validity []bool) (*Series, error) {
	if validity == nil {
		validity = fullValidity(len(values))
	} else if len(validity) != len(values) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"validity length %d does not match value length %d", len(validity), len(values))
	}
	return &Series{name: name, dtype: DateTime, datetimes: values, validity: validity}, nil
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Rename returns a copy of the series sharing buffers under a new name.
func (s *Series) Rename(name string) *Series {
	out := *s
	out.name = name
	return &out
}

// Type returns the value kind.
func (s *Series) Type() Type { return s.dtype }

// Len returns the row count.
func (s *Series) Len() int { return len(s.validity) }

// IsValid reports whether row i is non-null.
func (s *Series) IsValid(i int) bool { return s.validity[i] }

// Validity returns the validity buffer. Callers must not mutate it.
func (s *Series) Validity() []bool { return s.validity }

// IsNumeric reports whether the series participates in numeric kernels.
func (s *Series) IsNumeric() bool {
	return s.dtype == Int32 || s.dtype == Float64
}

// Int32s returns the value buffer of an int32 series.
func (s *Series) Int32s() ([]int32, error) {
	if s.dtype != Int32 {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"series %q is %s, not int32", s.name, s.dtype)
	}
	return s.int32s, nil
}

// Float64s returns the value buffer of a float64 series.
func (s *Series) Float64s() ([]float64, error) {
	if s.dtype != Float64 {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"series %q is %s, not float64", s.name, s.dtype)
	}
	return s.float64s, nil
}

// Bools returns the value buffer of a boolean series.
func (s *Series) Bools() ([]bool, error) {
	if s.dtype != Bool {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"series %q is %s, not bool", s.name, s.dtype)
	}
	return s.bools, nil
}

// Strings returns the value buffer of a string series.
func (s *Series) Strings() ([]string, error) {
	if s.dtype != String {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"series %q is %s, not string", s.name, s.dtype)
	}
	return s.strings, nil
}

// DateTimes returns the value buffer of a datetime series.
func (s *Series) DateTimes() ([]int64, error) {
	if s.dtype != DateTime {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"series %q is %s, not datetime", s.name, s.dtype)
	}
	return s.datetimes, nil
}

// Float64At returns row i widened to float64, for kinds with a numeric
// interpretation. The second result is false when the row is null.
func (s *Series) Float64At(i int) (float64, bool, error) {
	if !s.validity[i] {
		return 0, false, nil
	}
	switch s.dtype {
	case Int32:
		return float64(s.int32s[i]), true, nil
	case Float64:
		return s.float64s[i], true, nil
	case DateTime:
		return float64(s.datetimes[i]), true, nil
	default:
		return 0, false, errors.Newf(errors.ErrorTypeUnsupported,
			"series %q of type %s has no numeric interpretation", s.name, s.dtype)
	}
}

// StringAt returns the canonical stringified value of row i, used when
// deriving composite group keys. Null rows stringify to "null".
func (s *Series) StringAt(i int) string {
	if !s.validity[i] {
		return "null"
	}
	switch s.dtype {
	case Int32:
		return strconv.FormatInt(int64(s.int32s[i]), 10)
	case Float64:
		return strconv.FormatFloat(s.float64s[i], 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(s.bools[i])
	case String:
		return s.strings[i]
	case DateTime:
		return time.Unix(s.datetimes[i], 0).UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// Gather returns a new series containing the given rows in order.
func (s *Series) Gather(indices []int) *Series {
	out := &Series{name: s.name, dtype: s.dtype, validity: make([]bool, len(indices))}
	switch s.dtype {
	case Int32:
		out.int32s = make([]int32, len(indices))
		for j, i := range indices {
			out.int32s[j] = s.int32s[i]
			out.validity[j] = s.validity[i]
		}
	case Float64:
		out.float64s = make([]float64, len(indices))
		for j, i := range indices {
			out.float64s[j] = s.float64s[i]
			out.validity[j] = s.validity[i]
		}
	case Bool:
		out.bools = make([]bool, len(indices))
		for j, i := range indices {
			out.bools[j] = s.bools[i]
			out.validity[j] = s.validity[i]
		}
	case String:
		out.strings = make([]string, len(indices))
		for j, i := range indices {
			out.strings[j] = s.strings[i]
			out.validity[j] = s.validity[i]
		}
	case DateTime:
		out.datetimes = make([]int64, len(indices))
		for j, i := range indices {
			out.datetimes[j] = s.datetimes[i]
			out.validity[j] = s.validity[i]
		}
	}
	return out
}

// ValueAt returns row i as an untyped value, or nil for null rows. Used by
// row-wise export; hot paths use the typed buffers instead.
func (s *Series) ValueAt(i int) interface{} {
	if !s.validity[i] {
		return nil
	}
	switch s.dtype {
	case Int32:
		return s.int32s[i]
	case Float64:
		return s.float64s[i]
	case Bool:
		return s.bools[i]
	case String:
		return s.strings[i]
	case DateTime:
		return time.Unix(s.datetimes[i], 0).UTC()
	default:
		return nil
	}
}
