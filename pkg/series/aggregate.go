package series

import (
	"math"
	"sort"

	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/kernel"
)

// Count returns the number of valid rows.
func (s *Series) Count() int {
	n := 0
	for _, v := range s.validity {
		if v {
			n++
		}
	}
	return n
}

// ValidFloat64s gathers the valid rows widened to float64. Returns an
// error for kinds without a numeric interpretation.
func (s *Series) ValidFloat64s() ([]float64, error) {
	switch s.dtype {
	case Int32:
		out := make([]float64, 0, len(s.int32s))
		for i, v := range s.int32s {
			if s.validity[i] {
				out = append(out, float64(v))
			}
		}
		return out, nil
	case Float64:
		out := make([]float64, 0, len(s.float64s))
		for i, v := range s.float64s {
			if s.validity[i] {
				out = append(out, v)
			}
		}
		return out, nil
	case DateTime:
		out := make([]float64, 0, len(s.datetimes))
		for i, v := range s.datetimes {
			if s.validity[i] {
				out = append(out, float64(v))
			}
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"series %q of type %s has no numeric interpretation", s.name, s.dtype)
	}
}

// Sum returns the sum of valid rows as a float64 (int32 rows are widened).
func (s *Series) Sum() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return kernel.SumFloat64(values), nil
}

// Mean returns the arithmetic mean of valid rows.
func (s *Series) Mean() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return kernel.MeanFloat64(values)
}

// Min returns the minimum of valid rows.
func (s *Series) Min() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return kernel.MinFloat64(values)
}

// Max returns the maximum of valid rows.
func (s *Series) Max() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return kernel.MaxFloat64(values)
}

// Median returns the median of valid rows. Even-length inputs average the
// two middle values.
func (s *Series) Median() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return MedianFloat64(values)
}

// Variance returns the sample variance (n-1 denominator) of valid rows.
// A single valid row has variance zero.
func (s *Series) Variance() (float64, error) {
	values, err := s.ValidFloat64s()
	if err != nil {
		return 0, err
	}
	return VarianceFloat64(values)
}

// StdDev returns the sample standard deviation of valid rows.
func (s *Series) StdDev() (float64, error) {
	v, err := s.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// MedianFloat64 returns the median of values. Even-length inputs average
// the two middle values; the input is not mutated.
func MedianFloat64(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "median of empty input")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0, nil
	}
	return sorted[mid], nil
}

// VarianceFloat64 returns the sample variance (n-1 denominator) of values.
func VarianceFloat64(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "variance of empty input")
	}
	if len(values) == 1 {
		return 0, nil
	}
	mean, err := kernel.MeanFloat64(values)
	if err != nil {
		return 0, err
	}
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return acc / float64(len(values)-1), nil
}
