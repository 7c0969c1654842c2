// Package parallel provides a fork-join chunk scheduler for index ranges.
// Work over n elements is partitioned into contiguous chunks sized
// adaptively around a cache-friendly base, executed on a bounded worker
// pool, and joined with first-error propagation. There are no cancellation
// or timeout primitives: every dispatched chunk runs to completion or
// failure, and the caller blocks until the join resolves.
//
// The merge step of every caller must be commutative and associative,
// because no cross-chunk ordering is guaranteed.
package parallel

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quiverdb/quiver/pkg/errors"
)

// DefaultChunkSize is the base chunk size in elements, tuned for L1/L2
// residency of typical row-oriented chunk widths.
const DefaultChunkSize = 8192

// DefaultMinChunkSize is the floor applied when shrinking chunks for small
// inputs.
const DefaultMinChunkSize = 1024

// Range is a half-open index interval [Start, End) assigned to one chunk.
type Range struct {
	Start int
	End   int
}

// Len returns the number of elements in the range.
func (r Range) Len() int { return r.End - r.Start }

// Executor schedules chunked work across a fixed-size worker pool.
type Executor struct {
	workers      int
	chunkSize    int
	minChunkSize int
	logger       *zap.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithWorkers overrides the worker count; zero means detected hardware
// parallelism.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithChunkSize overrides the base chunk size.
func WithChunkSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithMinChunkSize overrides the minimum chunk size used by adaptive
// shrinking.
func WithMinChunkSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.minChunkSize = n
		}
	}
}

// WithLogger attaches a logger used for scheduling diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor with the given options. Defaults: worker count
// equal to runtime.NumCPU, 8192-element base chunks, 1024-element floor.
func New(opts ...Option) *Executor {
	e := &Executor{
		workers:      runtime.NumCPU(),
		chunkSize:    DefaultChunkSize,
		minChunkSize: DefaultMinChunkSize,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the worker pool size.
func (e *Executor) Workers() int { return e.workers }

// AdaptChunkSize returns the chunk size used for n elements.
//
// Small inputs (n below one base chunk per worker) get fewer, larger chunks
// to cut per-task dispatch overhead; large inputs (beyond 8 base chunks per
// worker) get smaller chunks for load balance; everything in between uses
// the base size unchanged.
func (e *Executor) AdaptChunkSize(n int) int {
	c, t := e.chunkSize, e.workers
	switch {
	case n < c*t:
		adapted := n / t
		if adapted < e.minChunkSize {
			adapted = e.minChunkSize
		}
		return adapted
	case n > c*t*8:
		return c / 2
	default:
		return c
	}
}

// Partition splits [0, n) into contiguous ranges of the adapted chunk size.
// The final range carries the remainder. Returns nil for n <= 0.
func (e *Executor) Partition(n int) []Range {
	if n <= 0 {
		return nil
	}
	chunk := e.AdaptChunkSize(n)
	ranges := make([]Range, 0, (n+chunk-1)/chunk)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// ForEach runs fn over [0, n) partitioned into chunks. Inputs smaller than
// two adapted chunks execute sequentially on the calling goroutine. The
// first chunk error (or panic, surfaced as an internal error) is returned
// after all dispatched chunks finish; no partial results are exposed on
// failure.
func (e *Executor) ForEach(n int, fn func(start, end int) error) error {
	return e.ForEachChunk(n, func(_ int, r Range) error {
		return fn(r.Start, r.End)
	})
}

// ForEachChunk is ForEach with the chunk ordinal passed through, letting
// callers maintain chunk-private state merged after the join.
func (e *Executor) ForEachChunk(n int, fn func(chunk int, r Range) error) error {
	if n <= 0 {
		return nil
	}

	chunk := e.AdaptChunkSize(n)
	if n < chunk*2 {
		return runChunk(0, Range{Start: 0, End: n}, fn)
	}

	ranges := e.Partition(n)
	e.logger.Debug("dispatching chunks",
		zap.Int("elements", n),
		zap.Int("chunk_size", chunk),
		zap.Int("chunks", len(ranges)),
		zap.Int("workers", e.workers))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			return runChunk(i, r, fn)
		})
	}
	return g.Wait()
}

// runChunk executes one chunk, converting panics into errors so a failing
// chunk aborts the join instead of the process.
func runChunk(i int, r Range, fn func(chunk int, r Range) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Newf(errors.ErrorTypeInternal, "chunk %d panicked: %v", i, rec)
		}
	}()
	if err := fn(i, r); err != nil {
		return errors.Wrap(err, errType(err), fmt.Sprintf("chunk %d failed", i))
	}
	return nil
}

// errType preserves the structured type of wrapped chunk errors.
func errType(err error) errors.ErrorType {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Type
	}
	return errors.ErrorTypeInternal
}
