package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsAndAccessors(t *testing.T) {
	s, err := NewInt32("ids", []int32{1, 2, 3}, []bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, "ids", s.Name())
	assert.Equal(t, Int32, s.Type())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.IsValid(0))
	assert.False(t, s.IsValid(1))
	assert.Equal(t, 2, s.Count())

	values, err := s.Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, values)

	_, err = s.Float64s()
	assert.Error(t, err, "typed accessor must reject a mismatched kind")
}

func TestNilValidityMeansAllValid(t *testing.T) {
	s, err := NewFloat64("x", []float64{1.5, 2.5}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count())
}

func TestValidityLengthMismatch(t *testing.T) {
	_, err := NewFloat64("x", []float64{1, 2, 3}, []bool{true})
	assert.Error(t, err)
}

func TestStringAt(t *testing.T) {
	i32, _ := NewInt32("a", []int32{-7}, nil)
	f64, _ := NewFloat64("b", []float64{2.5}, nil)
	b, _ := NewBool("c", []bool{true}, nil)
	str, _ := NewString("d", []string{"hello"}, nil)
	null, _ := NewInt32("e", []int32{0}, []bool{false})

	assert.Equal(t, "-7", i32.StringAt(0))
	assert.Equal(t, "2.5", f64.StringAt(0))
	assert.Equal(t, "true", b.StringAt(0))
	assert.Equal(t, "hello", str.StringAt(0))
	assert.Equal(t, "null", null.StringAt(0))
}

func TestAddFloat64Validity(t *testing.T) {
	a, _ := NewFloat64("a", []float64{1, 2, 3, 4}, []bool{true, true, false, true})
	b, _ := NewFloat64("b", []float64{10, 20, 30, 40}, []bool{true, false, true, true})

	sum, err := a.Add(b)
	require.NoError(t, err)

	values, err := sum.Float64s()
	require.NoError(t, err)
	assert.Equal(t, 11.0, values[0])
	assert.Equal(t, 44.0, values[3])
	assert.Equal(t, []bool{true, false, false, true}, sum.Validity())
}

func TestArithmeticInt32(t *testing.T) {
	a, _ := NewInt32("a", []int32{10, 20, 30}, nil)
	b, _ := NewInt32("b", []int32{3, 4, 5}, nil)

	mul, err := a.Mul(b)
	require.NoError(t, err)
	values, _ := mul.Int32s()
	assert.Equal(t, []int32{30, 80, 150}, values)

	div, err := a.Div(b)
	require.NoError(t, err)
	values, _ = div.Int32s()
	assert.Equal(t, []int32{3, 5, 6}, values)
}

func TestDivInt32NullZeroDivisorMasked(t *testing.T) {
	a, _ := NewInt32("a", []int32{10, 20}, nil)
	b, _ := NewInt32("b", []int32{2, 0}, []bool{true, false})

	div, err := a.Div(b)
	require.NoError(t, err, "a null zero divisor must not fail the whole op")
	assert.Equal(t, []bool{true, false}, div.Validity())
}

func TestDivInt32ValidZeroDivisorFails(t *testing.T) {
	a, _ := NewInt32("a", []int32{10}, nil)
	b, _ := NewInt32("b", []int32{0}, nil)

	_, err := a.Div(b)
	assert.Error(t, err)
}

func TestArithmeticShapeErrors(t *testing.T) {
	a, _ := NewFloat64("a", []float64{1, 2}, nil)
	b, _ := NewFloat64("b", []float64{1, 2, 3}, nil)
	c, _ := NewInt32("c", []int32{1, 2}, nil)
	d, _ := NewString("d", []string{"x", "y"}, nil)

	_, err := a.Add(b)
	assert.Error(t, err, "length mismatch")

	_, err = a.Add(c)
	assert.Error(t, err, "type mismatch")

	_, err = d.Add(d)
	assert.Error(t, err, "non-numeric kind")
}

func TestReductionsSkipNulls(t *testing.T) {
	s, _ := NewFloat64("x", []float64{1, 100, 2, 3}, []bool{true, false, true, true})

	sum, err := s.Sum()
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum)

	mean, err := s.Mean()
	require.NoError(t, err)
	assert.Equal(t, 2.0, mean)

	min, err := s.Min()
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)

	max, err := s.Max()
	require.NoError(t, err)
	assert.Equal(t, 3.0, max)
}

func TestMedian(t *testing.T) {
	odd, _ := NewInt32("x", []int32{5, 1, 9}, nil)
	m, err := odd.Median()
	require.NoError(t, err)
	assert.Equal(t, 5.0, m)

	even, _ := NewFloat64("y", []float64{4, 1, 3, 2}, nil)
	m, err = even.Median()
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)
}

func TestVariance(t *testing.T) {
	s, _ := NewFloat64("x", []float64{2, 4, 4, 4, 5, 5, 7, 9}, nil)
	v, err := s.Variance()
	require.NoError(t, err)
	assert.InDelta(t, 32.0/7.0, v, 1e-12)

	single, _ := NewFloat64("y", []float64{42}, nil)
	v, err = single.Variance()
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestGather(t *testing.T) {
	s, _ := NewString("x", []string{"a", "b", "c", "d"}, []bool{true, true, false, true})
	g := s.Gather([]int{3, 0, 2})

	values, err := g.Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "c"}, values)
	assert.Equal(t, []bool{true, true, false}, g.Validity())
}
