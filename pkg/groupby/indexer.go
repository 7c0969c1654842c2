package groupby

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/quiverdb/quiver/pkg/kernel"
	"github.com/quiverdb/quiver/pkg/parallel"
	"github.com/quiverdb/quiver/pkg/series"
)

// Strategy identifies an aggregation execution path.
type Strategy int

const (
	// StrategyDense accumulates into flat arrays indexed by key - min_key.
	StrategyDense Strategy = iota
	// StrategyHash accumulates into hash maps keyed by raw group value.
	StrategyHash
	// StrategyGeneric groups by canonical string keys and reduces per group.
	StrategyGeneric
)

func (s Strategy) String() string {
	switch s {
	case StrategyDense:
		return "dense"
	case StrategyHash:
		return "hash"
	case StrategyGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// keyScan is the result of one pass over the key column: the min/max key
// and the count of rows where both the key and the value are valid.
type keyScan struct {
	minKey    int32
	maxKey    int32
	validRows int
}

// keyRange returns max - min + 1 in 64 bits so wide key spans never
// overflow the classification arithmetic.
func (s keyScan) keyRange() int64 {
	return int64(s.maxKey) - int64(s.minKey) + 1
}

// scanKeys runs the parallel min/max/valid-count scan over the int32 key
// column, considering only rows where both the key and the value are valid.
func (e *Engine) scanKeys(key, value *series.Series) (keyScan, error) {
	keys, err := key.Int32s()
	if err != nil {
		return keyScan{}, err
	}
	keyValid := key.Validity()
	valValid := value.Validity()

	n := len(keys)
	partials := make([]keyScan, len(e.executor.Partition(n)))
	if len(partials) == 0 {
		partials = make([]keyScan, 1)
	}

	err = e.executor.ForEachChunk(n, func(chunk int, r parallel.Range) error {
		var s keyScan
		for i := r.Start; i < r.End; i++ {
			if !keyValid[i] || !valValid[i] {
				continue
			}
			k := keys[i]
			if s.validRows == 0 {
				s.minKey, s.maxKey = k, k
			} else {
				if k < s.minKey {
					s.minKey = k
				}
				if k > s.maxKey {
					s.maxKey = k
				}
			}
			s.validRows++
		}
		partials[chunk] = s
		return nil
	})
	if err != nil {
		return keyScan{}, err
	}

	var merged keyScan
	for _, s := range partials {
		if s.validRows == 0 {
			continue
		}
		if merged.validRows == 0 {
			merged = s
			continue
		}
		if s.minKey < merged.minKey {
			merged.minKey = s.minKey
		}
		if s.maxKey > merged.maxKey {
			merged.maxKey = s.maxKey
		}
		merged.validRows += s.validRows
	}
	return merged, nil
}

// classify picks dense or hash for a fast-path-eligible request. Dense
// arrays give index-addressed accumulation at O(range) memory, so they
// require a bounded range and enough rows to amortize the arrays.
func (e *Engine) classify(scan keyScan) Strategy {
	if scan.keyRange() <= e.cfg.DenseRangeLimit && scan.validRows >= e.cfg.DenseMinRows {
		return StrategyDense
	}
	return StrategyHash
}

// group is one distinct canonical key with the rows that produced it.
type group struct {
	key  []byte
	rows []int
}

// keyIndex maps canonical group keys to row indices. Buckets chain on
// xxhash collisions; element-wise byte comparison confirms key equality.
type keyIndex struct {
	buckets map[uint64][]*group
	order   []*group
}

// buildKeyIndex derives the canonical per-row key from the group column
// and collects rows sharing a key. Rows with a null key are grouped under
// the canonical "null" key. Single-threaded: the generic path trades speed
// for full type and function coverage.
func buildKeyIndex(key *series.Series) *keyIndex {
	idx := &keyIndex{buckets: make(map[uint64][]*group)}
	for i := 0; i < key.Len(); i++ {
		idx.insert([]byte(key.StringAt(i)), i)
	}
	return idx
}

func (idx *keyIndex) insert(canonical []byte, row int) {
	h := xxhash.Sum64(canonical)
	for _, g := range idx.buckets[h] {
		if kernel.EqualBytes(g.key, canonical) {
			g.rows = append(g.rows, row)
			return
		}
	}
	g := &group{key: canonical, rows: []int{row}}
	idx.buckets[h] = append(idx.buckets[h], g)
	idx.order = append(idx.order, g)
}

// sortedGroups returns the groups in ascending key order: numeric order
// when the key column is numeric, lexicographic canonical-key order
// otherwise. Each group's first row is its representative.
func (idx *keyIndex) sortedGroups(key *series.Series) []*group {
	groups := make([]*group, len(idx.order))
	copy(groups, idx.order)

	if key.IsNumeric() || key.Type() == series.DateTime {
		keyAt := func(g *group) (float64, bool) {
			v, ok, _ := key.Float64At(g.rows[0])
			return v, ok
		}
		sort.SliceStable(groups, func(a, b int) bool {
			av, aok := keyAt(groups[a])
			bv, bok := keyAt(groups[b])
			if aok != bok {
				return !aok // nulls first
			}
			return av < bv
		})
		return groups
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return string(groups[a].key) < string(groups[b].key)
	})
	return groups
}
