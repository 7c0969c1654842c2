package groupby

import (
	"go.uber.org/zap"

	"github.com/quiverdb/quiver/pkg/parallel"
	"github.com/quiverdb/quiver/pkg/pool"
	"github.com/quiverdb/quiver/pkg/series"
)

// denseAccum is one pair of range-sized accumulator arrays backed by the
// aligned pool. Buffers arrive zeroed from the pool.
type denseAccum struct {
	sums   *pool.Buffer[float64]
	counts *pool.Buffer[uint32]
}

func (e *Engine) newDenseAccum(keyRange int64) (*denseAccum, error) {
	sums, err := pool.Allocate[float64](e.pool, int(keyRange))
	if err != nil {
		return nil, err
	}
	counts, err := pool.Allocate[uint32](e.pool, int(keyRange))
	if err != nil {
		sums.Release()
		return nil, err
	}
	return &denseAccum{sums: sums, counts: counts}, nil
}

func (a *denseAccum) release() {
	a.sums.Release()
	a.counts.Release()
}

// aggregateDense runs the dense-array strategy: accumulators are flat
// arrays indexed by key - min_key, giving O(1) index-addressed accumulation
// with zero hashing cost at O(range) memory.
func (e *Engine) aggregateDense(key, value *series.Series, aggs []Aggregation, scan keyScan) ([]*series.Series, error) {
	keys, err := key.Int32s()
	if err != nil {
		return nil, err
	}
	vals, err := value.Float64s()
	if err != nil {
		return nil, err
	}
	keyValid := key.Validity()
	valValid := value.Validity()

	keyRange := scan.keyRange()
	final, err := e.newDenseAccum(keyRange)
	if err != nil {
		return nil, err
	}
	defer final.release()

	n := len(keys)
	sequential := n < e.cfg.SequentialRowLimit || keyRange < e.cfg.SequentialRangeLimit
	if sequential {
		accumulateDense(final, scan.minKey, keys, vals, keyValid, valValid, 0, n)
	} else {
		if err := e.accumulateDenseParallel(final, scan, keys, vals, keyValid, valValid); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("dense accumulation complete",
		zap.Int64("range", keyRange),
		zap.Bool("sequential", sequential))

	return emitDense(key.Name(), final, scan.minKey, aggs)
}

// accumulateDense is the linear accumulation pass shared by the sequential
// sub-path and each parallel chunk.
func accumulateDense(acc *denseAccum, minKey int32, keys []int32, vals []float64, keyValid, valValid []bool, start, end int) {
	sums := acc.sums.Slice()
	counts := acc.counts.Slice()
	for i := start; i < end; i++ {
		if !keyValid[i] || !valValid[i] {
			continue
		}
		idx := keys[i] - minKey
		sums[idx] += vals[i]
		counts[idx]++
	}
}

// accumulateDenseParallel partitions rows into chunks, each accumulating
// into a private range-sized array pair, then merges the chunk arrays into
// final by elementwise addition. The transient memory cost is
// O(range * chunks), bounded by the dense-strategy range ceiling.
func (e *Engine) accumulateDenseParallel(final *denseAccum, scan keyScan, keys []int32, vals []float64, keyValid, valValid []bool) error {
	n := len(keys)
	partials := make([]*denseAccum, len(e.executor.Partition(n)))
	defer func() {
		for _, p := range partials {
			if p != nil {
				p.release()
			}
		}
	}()

	err := e.executor.ForEachChunk(n, func(chunk int, r parallel.Range) error {
		acc, err := e.newDenseAccum(scan.keyRange())
		if err != nil {
			return err
		}
		partials[chunk] = acc
		accumulateDense(acc, scan.minKey, keys, vals, keyValid, valValid, r.Start, r.End)
		return nil
	})
	if err != nil {
		return err
	}

	sums := final.sums.Slice()
	counts := final.counts.Slice()
	for _, p := range partials {
		if p == nil {
			continue
		}
		ps := p.sums.Slice()
		pc := p.counts.Slice()
		for i := range sums {
			sums[i] += ps[i]
			counts[i] += pc[i]
		}
	}
	return nil
}

// emitDense walks the accumulator slots in order, emitting one row per
// populated slot. Slot order is ascending key order.
func emitDense(keyName string, acc *denseAccum, minKey int32, aggs []Aggregation) ([]*series.Series, error) {
	sums := acc.sums.Slice()
	counts := acc.counts.Slice()

	groups := 0
	for _, c := range counts {
		if c > 0 {
			groups++
		}
	}

	outKeys := make([]int32, 0, groups)
	outSums := make([]float64, 0, groups)
	outCounts := make([]uint32, 0, groups)
	for slot, c := range counts {
		if c == 0 {
			continue
		}
		outKeys = append(outKeys, minKey+int32(slot))
		outSums = append(outSums, sums[slot])
		outCounts = append(outCounts, c)
	}
	return accumColumns(keyName, outKeys, outSums, outCounts, aggs)
}
