package groupby

import (
	"math"

	"go.uber.org/zap"

	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/kernel"
	"github.com/quiverdb/quiver/pkg/series"
)

// aggregateGeneric runs the fallback strategy: rows are grouped by the
// canonical string key, then each group gathers its valid values and
// reduces them with the kernel (or a direct median/variance computation,
// which only this path supports). It covers every key type and function
// at the cost of per-row stringification.
func (e *Engine) aggregateGeneric(key *series.Series, values []*series.Series, aggs []Aggregation) ([]*series.Series, error) {
	idx := buildKeyIndex(key)
	groups := idx.sortedGroups(key)

	e.logger.Debug("generic accumulation complete",
		zap.Int("groups", len(groups)),
		zap.Int("rows", key.Len()))

	reps := make([]int, len(groups))
	for i, g := range groups {
		reps[i] = g.rows[0]
	}

	out := make([]*series.Series, 0, len(aggs)+1)
	out = append(out, key.Gather(reps))

	for i, agg := range aggs {
		col, err := genericColumn(values[i], agg, groups)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// genericColumn computes one aggregate over every group of the value
// column. Count emits int32; all other functions emit float64, null when
// the group has no valid values.
func genericColumn(value *series.Series, agg Aggregation, groups []*group) (*series.Series, error) {
	if agg.Func == FuncCount {
		counts := make([]int32, len(groups))
		for gi, g := range groups {
			n := 0
			for _, row := range g.rows {
				if value.IsValid(row) {
					n++
				}
			}
			counts[gi] = int32(n)
		}
		return series.NewInt32(agg.OutputName(), counts, nil)
	}

	results := make([]float64, len(groups))
	validity := make([]bool, len(groups))
	scratch := make([]float64, 0, 64)

	for gi, g := range groups {
		scratch = scratch[:0]
		for _, row := range g.rows {
			v, ok, err := value.Float64At(row)
			if err != nil {
				return nil, err
			}
			if ok {
				scratch = append(scratch, v)
			}
		}
		if len(scratch) == 0 {
			continue
		}

		var (
			r   float64
			err error
		)
		switch agg.Func {
		case FuncSum:
			r = kernel.SumFloat64(scratch)
		case FuncMean:
			r, err = kernel.MeanFloat64(scratch)
		case FuncMin:
			r, err = kernel.MinFloat64(scratch)
		case FuncMax:
			r, err = kernel.MaxFloat64(scratch)
		case FuncMedian:
			r, err = series.MedianFloat64(scratch)
		case FuncStd:
			r, err = series.VarianceFloat64(scratch)
			r = math.Sqrt(r)
		default:
			return nil, errors.Newf(errors.ErrorTypeUnsupported,
				"function %s is not supported by any path", agg.Func)
		}
		if err != nil {
			return nil, err
		}
		results[gi] = r
		validity[gi] = true
	}
	return series.NewFloat64(agg.OutputName(), results, validity)
}
