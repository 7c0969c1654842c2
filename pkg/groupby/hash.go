package groupby

import (
	"sort"

	"go.uber.org/zap"

	"github.com/quiverdb/quiver/pkg/parallel"
	"github.com/quiverdb/quiver/pkg/pool"
	"github.com/quiverdb/quiver/pkg/series"
)

// accumPair is the per-group mutable state of the fast paths.
type accumPair struct {
	sum   float64
	count uint32
}

// chunkMaps recycles per-chunk accumulator maps across aggregation calls.
var chunkMaps = pool.NewObject(
	func() map[int32]accumPair { return make(map[int32]accumPair, 256) },
	func(m map[int32]accumPair) { clear(m) },
)

// aggregateHash runs the hash-table strategy: each chunk accumulates into
// an independent map keyed by raw group value, then the partial maps merge
// single-threaded by summing matching keys. The merge stays sequential so
// the hot per-chunk accumulation phase never takes a lock.
func (e *Engine) aggregateHash(key, value *series.Series, aggs []Aggregation) ([]*series.Series, error) {
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

	n := len(keys)
	partials := make([]map[int32]accumPair, len(e.executor.Partition(n)))
	if len(partials) == 0 {
		partials = make([]map[int32]accumPair, 1)
	}
	defer func() {
		for _, m := range partials {
			if m != nil {
				chunkMaps.Put(m)
			}
		}
	}()

	err = e.executor.ForEachChunk(n, func(chunk int, r parallel.Range) error {
		m := chunkMaps.Get()
		partials[chunk] = m
		for i := r.Start; i < r.End; i++ {
			if !keyValid[i] || !valValid[i] {
				continue
			}
			acc := m[keys[i]]
			acc.sum += vals[i]
			acc.count++
			m[keys[i]] = acc
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	merged := make(map[int32]accumPair)
	for _, m := range partials {
		for k, acc := range m {
			total := merged[k]
			total.sum += acc.sum
			total.count += acc.count
			merged[k] = total
		}
	}

	e.logger.Debug("hash accumulation complete",
		zap.Int("chunks", len(partials)),
		zap.Int("groups", len(merged)))

	outKeys := make([]int32, 0, len(merged))
	for k := range merged {
		outKeys = append(outKeys, k)
	}
	sort.Slice(outKeys, func(a, b int) bool { return outKeys[a] < outKeys[b] })

	outSums := make([]float64, len(outKeys))
	outCounts := make([]uint32, len(outKeys))
	for i, k := range outKeys {
		outSums[i] = merged[k].sum
		outCounts[i] = merged[k].count
	}
	return accumColumns(key.Name(), outKeys, outSums, outCounts, aggs)
}
