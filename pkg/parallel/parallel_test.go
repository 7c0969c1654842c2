package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/pkg/errors"
)

func TestAdaptChunkSize(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(8192), WithMinChunkSize(1024))

	// Small input: fewer, larger chunks with a 1024 floor.
	assert.Equal(t, 1024, e.AdaptChunkSize(100))
	assert.Equal(t, 5000, e.AdaptChunkSize(20_000))

	// Mid-size input: base chunk unchanged.
	assert.Equal(t, 8192, e.AdaptChunkSize(8192*4))
	assert.Equal(t, 8192, e.AdaptChunkSize(8192*4*8))

	// Large input: halved for load balance.
	assert.Equal(t, 4096, e.AdaptChunkSize(8192*4*8+1))
}

func TestPartitionCoversEveryIndex(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(100), WithMinChunkSize(10))

	for _, n := range []int{0, 1, 9, 10, 99, 100, 101, 1000, 1001} {
		ranges := e.Partition(n)
		covered := 0
		prevEnd := 0
		for _, r := range ranges {
			assert.Equal(t, prevEnd, r.Start)
			assert.Greater(t, r.End, r.Start)
			covered += r.Len()
			prevEnd = r.End
		}
		assert.Equal(t, n, covered, "n=%d", n)
	}
}

func TestForEachVisitsEveryIndexOnce(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(64), WithMinChunkSize(16))

	n := 10_000
	seen := make([]int32, n)
	err := e.ForEach(n, func(start, end int) error {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		return nil
	})
	require.NoError(t, err)

	for i, c := range seen {
		require.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestForEachSequentialBypass(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(8192), WithMinChunkSize(1024))

	var calls int32
	err := e.ForEach(100, func(start, end int) error {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 100, end)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls, "small input must run as a single sequential chunk")
}

func TestForEachFirstErrorPropagation(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(16), WithMinChunkSize(8))

	boom := errors.New(errors.ErrorTypeInvalidOperation, "bad chunk")
	err := e.ForEach(1000, func(start, end int) error {
		if start >= 512 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidOperation))
}

func TestForEachPanicBecomesError(t *testing.T) {
	e := New(WithWorkers(2), WithChunkSize(16), WithMinChunkSize(8))

	err := e.ForEach(256, func(start, end int) error {
		if start == 0 {
			panic("kaboom")
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestForEachChunkOrdinals(t *testing.T) {
	e := New(WithWorkers(4), WithChunkSize(100), WithMinChunkSize(10))

	n := 1000
	var seen [10]int32
	err := e.ForEachChunk(n, func(chunk int, r Range) error {
		atomic.AddInt32(&seen[chunk], 1)
		assert.Equal(t, chunk*100, r.Start)
		return nil
	})
	require.NoError(t, err)
	for i, c := range seen {
		assert.Equal(t, int32(1), c, "chunk %d", i)
	}
}

func TestForEachZeroElements(t *testing.T) {
	e := New()
	called := false
	err := e.ForEach(0, func(start, end int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
