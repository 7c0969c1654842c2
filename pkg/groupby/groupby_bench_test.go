package groupby

import (
	"fmt"
	"testing"

	"github.com/quiverdb/quiver/pkg/series"
	"github.com/quiverdb/quiver/pkg/testutil"
)

func BenchmarkAggregateDense(b *testing.B) {
	for _, rows := range []int{10_000, 100_000, 1_000_000} {
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			key, value := testutil.GroupedData(b, rows, 100)
			e := New()
			aggs := []Aggregation{{Column: "value", Func: FuncSum}}

			b.ReportAllocs()
			b.SetBytes(int64(rows) * 12) // 4B key + 8B value per row
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := e.Aggregate(key, []*series.Series{value}, aggs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAggregateHash(b *testing.B) {
	// Sparse keys defeat the dense range check, forcing the hash strategy.
	rows := 100_000
	keys := make([]int32, rows)
	vals := make([]float64, rows)
	for i := 0; i < rows; i++ {
		keys[i] = int32((i % 1000) * 10_000)
		vals[i] = float64(i)
	}
	key, _ := series.NewInt32("group", keys, nil)
	value, _ := series.NewFloat64("value", vals, nil)
	e := New()
	aggs := []Aggregation{{Column: "value", Func: FuncSum}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Aggregate(key, []*series.Series{value}, aggs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAggregateGeneric(b *testing.B) {
	rows := 10_000
	keys := make([]string, rows)
	vals := make([]float64, rows)
	for i := 0; i < rows; i++ {
		keys[i] = fmt.Sprintf("key-%03d", i%100)
		vals[i] = float64(i)
	}
	key, _ := series.NewString("group", keys, nil)
	value, _ := series.NewFloat64("value", vals, nil)
	e := New()
	aggs := []Aggregation{{Column: "value", Func: FuncMean}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Aggregate(key, []*series.Series{value}, aggs); err != nil {
			b.Fatal(err)
		}
	}
}
