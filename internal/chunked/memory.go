package chunked

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// MemoryTracker accounts the bytes held by in-flight tiles against a limit.
// It is safe for concurrent use. A non-positive limit means unbounded.
type MemoryTracker struct {
	limit   int64
	sem     *semaphore.Weighted
	current atomic.Int64
	peak    atomic.Int64
}

func NewMemoryTracker(limit int64) *MemoryTracker {
	m := &MemoryTracker{limit: limit}
	if limit > 0 {
		m.sem = semaphore.NewWeighted(limit)
	}
	return m
}

// TryAllocate reserves n bytes if they fit under the limit right now.
func (m *MemoryTracker) TryAllocate(n int64) bool {
	if m.sem != nil && !m.sem.TryAcquire(n) {
		return false
	}
	m.bumpPeak(m.current.Add(n))
	return true
}

// Allocate reserves n bytes, waiting for other holders to release memory.
// A request larger than the whole limit fails at once with
// ErrMemoryExhausted; otherwise only ctx ends the wait.
func (m *MemoryTracker) Allocate(ctx context.Context, n int64) error {
	if !m.Fits(n) {
		return fmt.Errorf("%w: needs %d bytes, limit is %d", ErrMemoryExhausted, n, m.limit)
	}
	if m.sem != nil {
		if err := m.sem.Acquire(ctx, n); err != nil {
			return err
		}
	}
	m.bumpPeak(m.current.Add(n))
	return nil
}

// Fits reports whether n bytes could ever be reserved.
func (m *MemoryTracker) Fits(n int64) bool {
	return m.limit <= 0 || n <= m.limit
}

func (m *MemoryTracker) bumpPeak(v int64) {
	for {
		p := m.peak.Load()
		if v <= p || m.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// Release returns n bytes reserved by TryAllocate or Allocate.
func (m *MemoryTracker) Release(n int64) {
	m.current.Add(-n)
	if m.sem != nil {
		m.sem.Release(n)
	}
}

func (m *MemoryTracker) Current() int64 { return m.current.Load() }

func (m *MemoryTracker) Peak() int64 { return m.peak.Load() }

func (m *MemoryTracker) Limit() int64 { return m.limit }
