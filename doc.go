// Package quiver is an in-process columnar data-processing engine: typed
// series, a tabular frame container, and vectorized, parallel operators
// over them.
//
// The core is the adaptive group-by engine together with the kernel and
// memory layers it depends on:
//
//   - pkg/series: the typed column primitive (int32, float64, bool,
//     string, datetime) with per-row validity.
//   - pkg/frame: ordered named columns sharing one row count, with the
//     GroupBy entry point and CSV/JSON/snapshot glue.
//   - pkg/groupby: the aggregation engine. One call classifies the key
//     column and picks a dense-array, hash-table, or generic execution
//     strategy, accumulates in parallel chunks, and emits one row per
//     distinct group in ascending key order.
//   - pkg/kernel: unrolled-lane elementwise arithmetic and reductions
//     over numeric slices, with hardware detection and a scalar fallback.
//   - pkg/pool: 64-byte-aligned allocation with per-size free-list reuse.
//   - pkg/parallel: the fork-join chunk scheduler.
//
// # Quick start
//
//	group, _ := series.NewInt32("group", []int32{1, 2, 1, 3, 2}, nil)
//	value, _ := series.NewFloat64("value", []float64{10, 20, 30, 40, 50}, nil)
//	f, _ := frame.New(group, value)
//
//	out, err := f.GroupBy("group", []groupby.Aggregation{
//	    {Column: "value", Func: groupby.FuncSum},
//	})
//
// Aggregation calls are stateless and safe to issue concurrently; input
// buffers are borrowed immutably for the duration of one call.
package quiver
