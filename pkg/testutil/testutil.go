// Package testutil provides shared helpers for building test data. It
// depends only on pkg/series so both the frame and groupby test suites
// can use it.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/quiverdb/quiver/pkg/series"
)

// TestLogger creates a logger that writes to the test output and is
// cleaned up when the test completes.
func TestLogger(tb testing.TB) *zap.Logger {
	return zaptest.NewLogger(tb)
}

// Int32Series builds an int32 series, failing the test on error.
func Int32Series(tb testing.TB, name string, values []int32, validity []bool) *series.Series {
	tb.Helper()
	s, err := series.NewInt32(name, values, validity)
	require.NoError(tb, err)
	return s
}

// Float64Series builds a float64 series, failing the test on error.
func Float64Series(tb testing.TB, name string, values []float64, validity []bool) *series.Series {
	tb.Helper()
	s, err := series.NewFloat64(name, values, validity)
	require.NoError(tb, err)
	return s
}

// StringSeries builds a string series, failing the test on error.
func StringSeries(tb testing.TB, name string, values []string, validity []bool) *series.Series {
	tb.Helper()
	s, err := series.NewString(name, values, validity)
	require.NoError(tb, err)
	return s
}

// GroupedData builds a (group, value) column pair where group[i] = i %
// groups and value[i] = float64(i). Used by aggregation tests and
// benchmarks that need deterministic many-group inputs.
func GroupedData(tb testing.TB, rows, groups int) (*series.Series, *series.Series) {
	tb.Helper()
	keys := make([]int32, rows)
	vals := make([]float64, rows)
	for i := 0; i < rows; i++ {
		keys[i] = int32(i % groups)
		vals[i] = float64(i)
	}
	return Int32Series(tb, "group", keys, nil), Float64Series(tb, "value", vals, nil)
}
