package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/pkg/pool"
)

func TestPoolCollectorExportsStats(t *testing.T) {
	p := pool.NewAlignedPool(4)
	collector := NewPoolCollector(p)

	buf, err := pool.Allocate[float64](p, 128)
	require.NoError(t, err)
	buf.Release()

	// Second allocation of the same size is served from the free list.
	buf, err = pool.Allocate[float64](p, 128)
	require.NoError(t, err)
	buf.Release()

	expected := `
# HELP quiver_pool_allocations_total Aligned pool requests, split by fresh allocation vs free-list reuse.
# TYPE quiver_pool_allocations_total counter
quiver_pool_allocations_total{source="fresh"} 1
quiver_pool_allocations_total{source="reuse"} 1
# HELP quiver_pool_released_total Regions returned to the aligned pool, split by parked on a free list vs discarded.
# TYPE quiver_pool_released_total counter
quiver_pool_released_total{outcome="discarded"} 0
quiver_pool_released_total{outcome="parked"} 2
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}

func TestPoolCollectorDescribe(t *testing.T) {
	count := testutil.CollectAndCount(NewPoolCollector(pool.NewAlignedPool(1)))
	require.Equal(t, 4, count, "two series per metric family")
}
