package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/cache"
	"github.com/specialistvlad/pixelgrid/internal/chunked"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/inmemorystore"
	"github.com/specialistvlad/pixelgrid/internal/metrics"
	"github.com/specialistvlad/pixelgrid/internal/topology"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"golang.org/x/sync/errgroup"
)

// Engine executes graphs. It holds the collaborators that outlive a run;
// everything else is created per Execute call, so one Engine may run
// several graphs concurrently.
type Engine struct {
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables result reuse across runs. Without it UseCache is ignored.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics records node and run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the engine's cache, or nil.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// run is the state of one Execute call.
type run struct {
	engine    *Engine
	graph     *graph.Graph
	settings  Settings
	store     *inmemorystore.Store
	processor *chunked.Processor

	sinkMu sync.Mutex
	sink   Sink

	failed   atomic.Bool
	start    time.Time
	total    int
	finished atomic.Int32

	mu          sync.Mutex
	skipReasons map[graph.NodeID]SkipReason
	cacheHits   map[graph.NodeID]bool
	durations   map[graph.NodeID]time.Duration
	stats       Stats
}

// Execute runs g with the given settings. sink may be nil. The graph must
// not be mutated while it runs.
//
// Node failures are reported in the Result, not as an error. The error is
// non-nil only when the run was cancelled (matching ErrCancelled, with the
// partial Result) or the graph could not be ordered.
func (e *Engine) Execute(ctx context.Context, g *graph.Graph, settings Settings, sink Sink) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	settings = settings.normalized()
	start := time.Now()

	ids := g.NodeIDs()
	r := &run{
		engine:   e,
		graph:    g,
		settings: settings,
		store:    inmemorystore.New(ids),
		processor: chunked.NewProcessor(
			chunked.NewConfig(settings.TileSize, settings.TileSize, settings.MemoryLimit),
			e.metrics,
		),
		sink:        sink,
		start:       start,
		total:       len(ids),
		skipReasons: make(map[graph.NodeID]SkipReason),
		cacheHits:   make(map[graph.NodeID]bool),
		durations:   make(map[graph.NodeID]time.Duration),
	}

	logger.Info("🚀 Starting execution...",
		"nodes", len(ids),
		"parallel", settings.Parallel,
		"workers", settings.MaxWorkers,
		"policy", settings.FailurePolicy.String(),
		"cache", settings.UseCache && e.cache != nil,
	)
	r.emit(Event{Kind: EventStarted, Total: r.total})

	var err error
	if settings.Parallel {
		err = r.runBatches(ctx)
	} else {
		err = r.runSequential(ctx)
	}
	if err != nil {
		return nil, err
	}

	// Whatever never started is skipped.
	reason := SkipFailFast
	if ctx.Err() != nil {
		reason = SkipCancelled
	}
	for _, id := range ids {
		if r.store.Status(id) == StatusPending {
			r.skip(ctx, id, reason)
		}
	}

	result := r.result(time.Since(start))
	if ctx.Err() != nil {
		result.Success = false
		logger.Warn("Execution cancelled.", "elapsed", result.Elapsed, "completed", result.Stats.Executed+result.Stats.Cached)
		r.emit(Event{Kind: EventCancelled, Done: int(r.finished.Load()), Total: r.total})
		e.metrics.RunFinished("cancelled")
		return result, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}
	e.metrics.RunFinished(outcome)
	logger.Info("🏁 Execution finished.",
		"success", result.Success,
		"elapsed", result.Elapsed,
		"executed", result.Stats.Executed,
		"cached", result.Stats.Cached,
		"skipped", result.Stats.Skipped,
		"failed", result.Stats.Failed,
	)
	r.emit(Event{Kind: EventCompleted, Done: int(r.finished.Load()), Total: r.total})
	return result, nil
}

func (r *run) runSequential(ctx context.Context) error {
	order, err := topology.Order(r.graph)
	if err != nil {
		return err
	}
	for _, id := range order {
		if ctx.Err() != nil || r.stopping() {
			return nil
		}
		r.node(ctx, id)
	}
	return nil
}

func (r *run) runBatches(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	batches, err := topology.Batches(r.graph)
	if err != nil {
		return err
	}
	for i, batch := range batches {
		if ctx.Err() != nil || r.stopping() {
			return nil
		}
		logger.Debug("Starting batch.", "batch", i, "size", len(batch))

		var grp errgroup.Group
		grp.SetLimit(r.settings.MaxWorkers)
		for _, id := range batch {
			grp.Go(func() error {
				r.node(ctx, id)
				return nil
			})
		}
		// Nodes never return errors to the group; failures live in the store.
		_ = grp.Wait()
	}
	return nil
}

// stopping reports whether fail-fast has been triggered.
func (r *run) stopping() bool {
	return r.settings.FailurePolicy == FailFast && r.failed.Load()
}

func (r *run) emit(ev Event) {
	if r.sink == nil {
		return
	}
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	r.sink.OnEvent(ev)
}

func (r *run) progress() {
	done := int(r.finished.Add(1))
	elapsed := time.Since(r.start)
	r.emit(Event{
		Kind:      EventProgress,
		Done:      done,
		Total:     r.total,
		Elapsed:   elapsed,
		Remaining: estimateRemaining(elapsed, done, r.total),
	})
}

// estimateRemaining extrapolates the mean time per finished node over the
// nodes still to go.
func estimateRemaining(elapsed time.Duration, done, total int) time.Duration {
	if done <= 0 || done >= total {
		return 0
	}
	return elapsed / time.Duration(done) * time.Duration(total-done)
}

func (r *run) result(elapsed time.Duration) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &Result{
		Outputs:     r.store.AllOutputs(),
		Errors:      r.store.Errors(),
		Statuses:    r.store.Statuses(),
		SkipReasons: r.skipReasons,
		CacheHits:   r.cacheHits,
		Durations:   r.durations,
		Terminal:    make(map[graph.NodeID]map[string]value.Value),
		Stats:       r.stats,
		Elapsed:     elapsed,
	}
	res.Success = len(res.Errors) == 0
	for _, id := range r.graph.Sinks() {
		if out, ok := res.Outputs[id]; ok {
			res.Terminal[id] = out
		}
	}
	return res
}
