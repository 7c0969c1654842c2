package pool

import (
	"sync"
	"sync/atomic"
)

// Object is a generic typed object pool wrapping sync.Pool with statistics
// and automatic reset. It backs the reuse of per-chunk accumulator maps in
// the aggregation engine, where allocation churn would otherwise dominate.
type Object[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
	}
}

// NewObject creates a typed pool with custom allocation and reset
// functions. The reset function, if non-nil, runs before an object is
// returned to the pool.
func NewObject[T any](newFn func() T, reset func(T)) *Object[T] {
	p := &Object[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Object[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Object[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// ObjectStats reports allocation and checkout counters for an object pool.
func (p *Object[T]) ObjectStats() (allocated, inUse int64) {
	return atomic.LoadInt64(&p.stats.allocated), atomic.LoadInt64(&p.stats.inUse)
}
