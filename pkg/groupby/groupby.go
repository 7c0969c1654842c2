// Package groupby implements the adaptive aggregation engine. One engine
// consolidates three execution strategies behind a single entry point:
// a dense-array path for small integer key ranges, a hash path for sparse
// or wide ranges, and a generic fallback for every other key shape or
// aggregate function. Strategy selection is driven by a parallel key scan
// (see indexer.go); output rows are ordered by ascending group key on
// every path.
package groupby

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/quiverdb/quiver/pkg/config"
	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/metrics"
	"github.com/quiverdb/quiver/pkg/parallel"
	"github.com/quiverdb/quiver/pkg/pool"
	"github.com/quiverdb/quiver/pkg/series"
)

// Func identifies an aggregate function by its wire token.
type Func string

const (
	FuncSum   Func = "sum"
	FuncMean  Func = "mean"
	FuncMin   Func = "min"
	FuncMax   Func = "max"
	FuncCount Func = "count"

	// FuncMedian and FuncStd are supported by the generic path only.
	FuncMedian Func = "median"
	FuncStd    Func = "std"
)

// ParseFunc validates a function token.
func ParseFunc(token string) (Func, error) {
	switch f := Func(token); f {
	case FuncSum, FuncMean, FuncMin, FuncMax, FuncCount, FuncMedian, FuncStd:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrorTypeUnsupported,
			"unknown aggregate function %q", token)
	}
}

// Aggregation pairs a value column with an aggregate function.
type Aggregation struct {
	Column string
	Func   Func
}

// OutputName returns the result column name for the aggregation.
func (a Aggregation) OutputName() string {
	return fmt.Sprintf("%s_%s", a.Column, a.Func)
}

// Engine executes group-by aggregations. An Engine is stateless across
// calls and safe for concurrent use; all per-call state lives in ephemeral
// accumulators.
type Engine struct {
	cfg      config.GroupByConfig
	executor *parallel.Executor
	pool     *pool.AlignedPool
	logger   *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithConfig overrides the strategy-selection thresholds.
func WithConfig(cfg config.GroupByConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithExecutor overrides the parallel executor.
func WithExecutor(ex *parallel.Executor) Option {
	return func(e *Engine) {
		if ex != nil {
			e.executor = ex
		}
	}
}

// WithPool overrides the aligned pool backing dense accumulator arrays.
func WithPool(p *pool.AlignedPool) Option {
	return func(e *Engine) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithLogger attaches a logger for strategy-selection diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine with default thresholds, a shared executor, and
// the process-wide pool.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:      config.Default().GroupBy,
		executor: parallel.New(),
		pool:     pool.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the lazily initialized process-wide engine.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Aggregate groups the key column and computes one output column per
// aggregation, evaluated against values[i]. The first output column is the
// group key. Rows are emitted in ascending key order; zero valid rows
// produce a zero-row result and no error.
func (e *Engine) Aggregate(key *series.Series, values []*series.Series, aggs []Aggregation) ([]*series.Series, error) {
	if len(aggs) == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidOperation,
			"at least one aggregation is required")
	}
	if len(values) != len(aggs) {
		return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
			"got %d value columns for %d aggregations", len(values), len(aggs))
	}
	for i, v := range values {
		if v.Len() != key.Len() {
			return nil, errors.Newf(errors.ErrorTypeInvalidOperation,
				"value column %q has %d rows, key column %q has %d",
				v.Name(), v.Len(), key.Name(), key.Len())
		}
		if _, err := ParseFunc(string(aggs[i].Func)); err != nil {
			return nil, err
		}
	}

	timer := metrics.NewTimer()
	out, strategy, err := e.execute(key, values, aggs)
	metrics.RecordAggregation(strategy.String(), key.Len(), timer.Stop(), err)
	return out, err
}

func (e *Engine) execute(key *series.Series, values []*series.Series, aggs []Aggregation) ([]*series.Series, Strategy, error) {
	if fastEligible(key, values, aggs) {
		value := values[0]
		scan, err := e.scanKeys(key, value)
		if err != nil {
			return nil, StrategyDense, err
		}
		strategy := e.classify(scan)
		if scan.validRows == 0 {
			return emptyResult(key, aggs), strategy, nil
		}

		e.logger.Debug("strategy selected",
			zap.String("strategy", strategy.String()),
			zap.Int64("range", scan.keyRange()),
			zap.Int("valid_rows", scan.validRows))

		if strategy == StrategyDense {
			out, err := e.aggregateDense(key, value, aggs, scan)
			return out, strategy, err
		}
		out, err := e.aggregateHash(key, value, aggs)
		return out, strategy, err
	}

	out, err := e.aggregateGeneric(key, values, aggs)
	return out, StrategyGeneric, err
}

// fastEligible reports whether the dense/hash fast paths cover the request:
// a single int32 key, one shared float64 value column, and functions
// derivable from the (sum, count) accumulator.
func fastEligible(key *series.Series, values []*series.Series, aggs []Aggregation) bool {
	if key.Type() != series.Int32 {
		return false
	}
	for i, agg := range aggs {
		switch agg.Func {
		case FuncSum, FuncCount, FuncMean:
		default:
			return false
		}
		if values[i] != values[0] {
			return false
		}
	}
	return values[0].Type() == series.Float64
}

// emptyResult builds the zero-row output schema: the key column followed
// by one column per aggregation.
func emptyResult(key *series.Series, aggs []Aggregation) []*series.Series {
	out := make([]*series.Series, 0, len(aggs)+1)
	out = append(out, key.Gather(nil))
	for _, agg := range aggs {
		var col *series.Series
		if agg.Func == FuncCount {
			col, _ = series.NewInt32(agg.OutputName(), nil, nil)
		} else {
			col, _ = series.NewFloat64(agg.OutputName(), nil, nil)
		}
		out = append(out, col)
	}
	return out
}

// accumColumns converts ascending-ordered (key, sum, count) triples into
// the output schema shared by the dense and hash paths.
func accumColumns(keyName string, keys []int32, sums []float64, counts []uint32, aggs []Aggregation) ([]*series.Series, error) {
	out := make([]*series.Series, 0, len(aggs)+1)
	keyCol, err := series.NewInt32(keyName, keys, nil)
	if err != nil {
		return nil, err
	}
	out = append(out, keyCol)

	for _, agg := range aggs {
		switch agg.Func {
		case FuncSum:
			vals := make([]float64, len(keys))
			copy(vals, sums)
			col, err := series.NewFloat64(agg.OutputName(), vals, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, col)
		case FuncMean:
			vals := make([]float64, len(keys))
			for i := range vals {
				vals[i] = sums[i] / float64(counts[i])
			}
			col, err := series.NewFloat64(agg.OutputName(), vals, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, col)
		case FuncCount:
			vals := make([]int32, len(keys))
			for i, c := range counts {
				vals[i] = int32(c)
			}
			col, err := series.NewInt32(agg.OutputName(), vals, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, col)
		default:
			return nil, errors.Newf(errors.ErrorTypeInternal,
				"function %s reached a fast path", agg.Func)
		}
	}
	return out, nil
}
