// Package metrics exposes Prometheus instruments for the engine and cache.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pixelgrid"

// Metrics holds every instrument, registered on one registry.
type Metrics struct {
	nodes        *prometheus.CounterVec
	nodeDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	tiles        prometheus.Counter
	tileSplits   prometheus.Counter

	cacheLookups   *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheMemory    prometheus.Gauge
	cacheEntries   prometheus.Gauge
}

// New registers the instruments on reg. Passing a fresh registry per App
// keeps parallel tests from colliding on the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		nodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "nodes_total",
			Help:      "Nodes finished, by operation and final status.",
		}, []string{"operation", "status"}),
		nodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "node_duration_seconds",
			Help:      "Time spent executing a node, cache hits excluded.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"operation"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Graph executions, by outcome.",
		}, []string{"outcome"}),
		tiles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunked",
			Name:      "tiles_total",
			Help:      "Tiles processed by the chunked engine.",
		}),
		tileSplits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunked",
			Name:      "tile_splits_total",
			Help:      "Tiles split because their working set exceeded the memory limit.",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups, by result.",
		}, []string{"result"}),
		cacheEvictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed from the cache, by reason.",
		}, []string{"reason"}),
		cacheMemory: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "memory_bytes",
			Help:      "Approximate memory held by cached outputs.",
		}),
		cacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of cached node results.",
		}),
	}
}

func (m *Metrics) NodeFinished(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(operation, status).Inc()
	if d > 0 {
		m.nodeDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) RunFinished(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TileProcessed() {
	if m == nil {
		return
	}
	m.tiles.Inc()
}

func (m *Metrics) TileSplit() {
	if m == nil {
		return
	}
	m.tileSplits.Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CacheEvicted counts a removal; reason is "capacity", "memory" or "expired".
func (m *Metrics) CacheEvicted(reason string) {
	if m == nil {
		return
	}
	m.cacheEvictions.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheUsage(entries int, memory int64) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(entries))
	m.cacheMemory.Set(float64(memory))
}
