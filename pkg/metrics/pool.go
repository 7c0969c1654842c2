package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quiverdb/quiver/pkg/pool"
)

var (
	poolAllocationsDesc = prometheus.NewDesc(
		"quiver_pool_allocations_total",
		"Aligned pool requests, split by fresh allocation vs free-list reuse.",
		[]string{"source"}, nil,
	)
	poolReleasedDesc = prometheus.NewDesc(
		"quiver_pool_released_total",
		"Regions returned to the aligned pool, split by parked on a free list vs discarded.",
		[]string{"outcome"}, nil,
	)
)

// poolCollector exports an AlignedPool's counters on scrape. The pool
// already maintains its statistics atomically, so the collector reads a
// snapshot instead of double-counting on the allocation path.
type poolCollector struct {
	pool *pool.AlignedPool
}

// NewPoolCollector creates a Prometheus collector over the given pool's
// statistics. The process-wide default pool is registered at package
// init; register additional collectors for isolated pools as needed.
func NewPoolCollector(p *pool.AlignedPool) prometheus.Collector {
	return &poolCollector{pool: p}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolAllocationsDesc
	ch <- poolReleasedDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pool.Stats()
	ch <- prometheus.MustNewConstMetric(poolAllocationsDesc,
		prometheus.CounterValue, float64(stats.Allocations), "fresh")
	ch <- prometheus.MustNewConstMetric(poolAllocationsDesc,
		prometheus.CounterValue, float64(stats.Reuses), "reuse")
	ch <- prometheus.MustNewConstMetric(poolReleasedDesc,
		prometheus.CounterValue, float64(stats.Returned), "parked")
	ch <- prometheus.MustNewConstMetric(poolReleasedDesc,
		prometheus.CounterValue, float64(stats.Discarded), "discarded")
}

func init() {
	prometheus.MustRegister(NewPoolCollector(pool.Default()))
}
