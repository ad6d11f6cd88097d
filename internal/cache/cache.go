package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/metrics"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Defaults applied by DefaultConfig.
const (
	DefaultCapacity  = 100
	DefaultMaxMemory = 512 << 20
	DefaultTTL       = time.Hour
)

// Config bounds the cache. Zero values disable the respective bound, except
// Capacity which falls back to DefaultCapacity.
type Config struct {
	Capacity  int
	MaxMemory int64
	TTL       time.Duration
}

func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity, MaxMemory: DefaultMaxMemory, TTL: DefaultTTL}
}

type entry struct {
	outputs map[string]value.Value
	created time.Time
	cost    time.Duration
	size    int64
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	TimeSaved   time.Duration
	MemoryBytes int64
	Entries     int
}

// HitRatio is hits over lookups, or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache stores node outputs under a Key. It is safe for concurrent use and
// guarantees at most one concurrent computation per key through
// GetOrCompute.
type Cache struct {
	cfg     Config
	store   *lru.Cache[Key, *entry]
	memory  atomic.Int64
	flights [flightShards]flightShard
	metrics *metrics.Metrics
	now     func() time.Time

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
	saved       atomic.Int64
}

// Option customizes a Cache.
type Option func(*Cache)

// WithMetrics reports lookups, evictions and usage to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache bounded by cfg.
func New(cfg Config, opts ...Option) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	c := &Cache{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.flights {
		c.flights[i].m = make(map[Key]*flight)
	}
	// The error is only returned for a non-positive size.
	c.store, _ = lru.NewWithEvict[Key, *entry](cfg.Capacity, func(_ Key, e *entry) {
		c.memory.Add(-e.size)
	})
	return c
}

// Get returns the outputs stored under key. Expired entries are evicted and
// reported as misses.
func (c *Cache) Get(key Key) (map[string]value.Value, bool) {
	e, ok := c.lookup(key)
	c.record(e, ok)
	if !ok {
		return nil, false
	}
	return e.outputs, true
}

// Put stores outputs computed in cost. Storing under an existing key
// replaces the entry.
func (c *Cache) Put(key Key, outputs map[string]value.Value, cost time.Duration) {
	e := &entry{outputs: outputs, created: c.now(), cost: cost}
	for _, v := range outputs {
		e.size += v.SizeBytes()
	}
	if c.cfg.MaxMemory > 0 && e.size > c.cfg.MaxMemory {
		return
	}

	c.store.Remove(key)
	c.memory.Add(e.size)
	if evicted := c.store.Add(key, e); evicted {
		c.evicted("capacity")
	}
	for c.cfg.MaxMemory > 0 && c.memory.Load() > c.cfg.MaxMemory {
		if _, _, ok := c.store.RemoveOldest(); !ok {
			break
		}
		c.evicted("memory")
	}
	c.metrics.CacheUsage(c.store.Len(), c.memory.Load())
}

// GetOrCompute returns the cached outputs for key, or runs compute and
// caches its result. Concurrent callers with the same key wait for the first
// one and then read its entry. If that computation fails, the next waiter
// takes over. The boolean reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func() (map[string]value.Value, error)) (map[string]value.Value, bool, error) {
	for {
		if e, ok := c.lookup(key); ok {
			c.record(e, true)
			return e.outputs, true, nil
		}

		f, leader := c.claim(key)
		if !leader {
			select {
			case <-f.done:
				continue
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}

		return c.lead(key, f, compute)
	}
}

func (c *Cache) lead(key Key, f *flight, compute func() (map[string]value.Value, error)) (map[string]value.Value, bool, error) {
	defer c.release(key, f)

	// Another leader may have finished between the lookup and the claim.
	if e, ok := c.lookup(key); ok {
		c.record(e, true)
		return e.outputs, true, nil
	}
	c.record(nil, false)

	start := c.now()
	outputs, err := compute()
	if err == nil {
		c.Put(key, outputs, c.now().Sub(start))
	}
	return outputs, false, err
}

func (c *Cache) lookup(key Key) (*entry, bool) {
	e, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if c.cfg.TTL > 0 && c.now().Sub(e.created) > c.cfg.TTL {
		if c.store.Remove(key) {
			c.expirations.Add(1)
			c.metrics.CacheEvicted("expired")
		}
		return nil, false
	}
	return e, true
}

func (c *Cache) record(e *entry, hit bool) {
	c.metrics.CacheLookup(hit)
	if !hit {
		c.misses.Add(1)
		return
	}
	c.hits.Add(1)
	c.saved.Add(int64(e.cost))
}

func (c *Cache) evicted(reason string) {
	c.evictions.Add(1)
	c.metrics.CacheEvicted(reason)
}

// Invalidate drops one entry.
func (c *Cache) Invalidate(key Key) bool {
	return c.store.Remove(key)
}

// InvalidateNode drops every entry computed for node and returns how many
// were removed.
func (c *Cache) InvalidateNode(node graph.NodeID) int {
	n := 0
	for _, k := range c.store.Keys() {
		if k.Node == node && c.store.Remove(k) {
			n++
		}
	}
	return n
}

// Clear drops every entry. Statistics are kept.
func (c *Cache) Clear() {
	c.store.Purge()
	c.metrics.CacheUsage(0, c.memory.Load())
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int { return c.store.Len() }

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		TimeSaved:   time.Duration(c.saved.Load()),
		MemoryBytes: c.memory.Load(),
		Entries:     c.store.Len(),
	}
}

// --- in-flight claims ---

const flightShards = 32

type flight struct {
	done chan struct{}
}

type flightShard struct {
	mu sync.Mutex
	m  map[Key]*flight
}

func (c *Cache) shard(key Key) *flightShard {
	return &c.flights[key.Hash%flightShards]
}

// claim returns the in-flight computation for key and whether the caller
// became its leader.
func (c *Cache) claim(key Key) (*flight, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.m[key]; ok {
		return f, false
	}
	f := &flight{done: make(chan struct{})}
	s.m[key] = f
	return f, true
}

func (c *Cache) release(key Key, f *flight) {
	s := c.shard(key)
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	close(f.done)
}
