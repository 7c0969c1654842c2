package kernel

import (
	"github.com/quiverdb/quiver/pkg/errors"
)

// SumFloat64 returns the sum of values. The fast path keeps one partial
// accumulator per lane and combines them as a tree at the end; the result
// can therefore differ from the sequential sum in the last bits.
func SumFloat64(values []float64) float64 {
	i := 0
	var sum float64
	if FastPathEnabled() && len(values) >= LanesFloat64 {
		var s0, s1, s2, s3 float64
		for ; i <= len(values)-LanesFloat64; i += LanesFloat64 {
			s0 += values[i]
			s1 += values[i+1]
			s2 += values[i+2]
			s3 += values[i+3]
		}
		sum = (s0 + s1) + (s2 + s3)
	}
	for ; i < len(values); i++ {
		sum += values[i]
	}
	return sum
}

// MeanFloat64 returns the arithmetic mean of values.
func MeanFloat64(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "mean of empty slice")
	}
	return SumFloat64(values) / float64(len(values)), nil
}

// MinFloat64 returns the minimum of values.
func MinFloat64(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "min of empty slice")
	}
	i := 1
	min := values[0]
	if FastPathEnabled() && len(values) >= LanesFloat64 {
		m0, m1, m2, m3 := values[0], values[0], values[0], values[0]
		for i = 0; i <= len(values)-LanesFloat64; i += LanesFloat64 {
			if values[i] < m0 {
				m0 = values[i]
			}
			if values[i+1] < m1 {
				m1 = values[i+1]
			}
			if values[i+2] < m2 {
				m2 = values[i+2]
			}
			if values[i+3] < m3 {
				m3 = values[i+3]
			}
		}
		min = m0
		if m1 < min {
			min = m1
		}
		if m2 < min {
			min = m2
		}
		if m3 < min {
			min = m3
		}
	}
	for ; i < len(values); i++ {
		if values[i] < min {
			min = values[i]
		}
	}
	return min, nil
}

// MaxFloat64 returns the maximum of values.
func MaxFloat64(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "max of empty slice")
	}
	i := 1
	max := values[0]
	if FastPathEnabled() && len(values) >= LanesFloat64 {
		m0, m1, m2, m3 := values[0], values[0], values[0], values[0]
		for i = 0; i <= len(values)-LanesFloat64; i += LanesFloat64 {
			if values[i] > m0 {
				m0 = values[i]
			}
			if values[i+1] > m1 {
				m1 = values[i+1]
			}
			if values[i+2] > m2 {
				m2 = values[i+2]
			}
			if values[i+3] > m3 {
				m3 = values[i+3]
			}
		}
		max = m0
		if m1 > max {
			max = m1
		}
		if m2 > max {
			max = m2
		}
		if m3 > max {
			max = m3
		}
	}
	for ; i < len(values); i++ {
		if values[i] > max {
			max = values[i]
		}
	}
	return max, nil
}

// SumInt32 returns the sum of values widened to int64 so that large inputs
// cannot overflow the accumulator.
func SumInt32(values []int32) int64 {
	i := 0
	var sum int64
	if FastPathEnabled() && len(values) >= LanesInt32 {
		var s0, s1, s2, s3, s4, s5, s6, s7 int64
		for ; i <= len(values)-LanesInt32; i += LanesInt32 {
			s0 += int64(values[i])
			s1 += int64(values[i+1])
			s2 += int64(values[i+2])
			s3 += int64(values[i+3])
			s4 += int64(values[i+4])
			s5 += int64(values[i+5])
			s6 += int64(values[i+6])
			s7 += int64(values[i+7])
		}
		sum = ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
	}
	for ; i < len(values); i++ {
		sum += int64(values[i])
	}
	return sum
}

// MeanInt32 returns the arithmetic mean of values as a float64.
func MeanInt32(values []int32) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "mean of empty slice")
	}
	return float64(SumInt32(values)) / float64(len(values)), nil
}

// MinInt32 returns the minimum of values.
func MinInt32(values []int32) (int32, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "min of empty slice")
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}

// MaxInt32 returns the maximum of values.
func MaxInt32(values []int32) (int32, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrorTypeInvalidOperation, "max of empty slice")
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// EqualBytes reports whether two byte slices are equal using a lane-wide
// short-circuiting comparison. Used for canonical group-key elements.
func EqualBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for ; i <= len(a)-8; i += 8 {
		if a[i] != b[i] || a[i+1] != b[i+1] || a[i+2] != b[i+2] || a[i+3] != b[i+3] ||
			a[i+4] != b[i+4] || a[i+5] != b[i+5] || a[i+6] != b[i+6] || a[i+7] != b[i+7] {
			return false
		}
	}
	for ; i < len(a); i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
