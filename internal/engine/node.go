package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/cache"
	"github.com/specialistvlad/pixelgrid/internal/chunked"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// node drives one node from Pending to a terminal status.
func (r *run) node(ctx context.Context, id graph.NodeID) {
	n, ok := r.graph.Node(id)
	if !ok {
		return
	}
	switch {
	case ctx.Err() != nil:
		r.skip(ctx, id, SkipCancelled)
		return
	case r.stopping():
		r.skip(ctx, id, SkipFailFast)
		return
	case n.Disabled && r.settings.SkipDisabled:
		r.skip(ctx, id, SkipDisabled)
		return
	}
	if reason, blocked := r.blocked(id); blocked {
		r.skip(ctx, id, reason)
		return
	}
	if !r.store.Transition(id, StatusPending, StatusRunning) {
		return
	}

	ctx = ctxlog.With(ctx, "node_id", id.String(), "operation", n.OperationID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker picked up node for execution.")
	r.emit(Event{Kind: EventNodeStarted, Node: id, Operation: n.OperationID})

	start := time.Now()
	outputs, hit, err := r.execute(ctx, n)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			r.store.Transition(id, StatusRunning, StatusSkipped)
			r.finishSkip(ctx, n, SkipCancelled)
			return
		}
		r.fail(ctx, n, err, elapsed)
		return
	}

	r.store.SetOutputs(id, outputs)
	r.store.Transition(id, StatusRunning, StatusCompleted)

	r.mu.Lock()
	r.cacheHits[id] = hit
	r.durations[id] = elapsed
	if hit {
		r.stats.Cached++
	} else {
		r.stats.Executed++
	}
	r.mu.Unlock()

	if hit {
		logger.Debug("Node served from cache.")
		r.emit(Event{Kind: EventNodeSkipped, Node: id, Operation: n.OperationID, Reason: SkipCached})
		r.engine.metrics.NodeFinished(n.OperationID, "cached", 0)
	} else {
		logger.Debug("Node execution succeeded.", "duration", elapsed)
		r.emit(Event{Kind: EventNodeCompleted, Node: id, Operation: n.OperationID, Duration: elapsed})
		r.engine.metrics.NodeFinished(n.OperationID, "completed", elapsed)
	}
	r.progress()
}

// blocked reports whether a predecessor did not complete, and the reason to
// give the node.
func (r *run) blocked(id graph.NodeID) (SkipReason, bool) {
	for _, pred := range r.graph.Predecessors(id) {
		switch r.store.Status(pred) {
		case StatusCompleted:
			continue
		case StatusSkipped:
			r.mu.Lock()
			reason := r.skipReasons[pred]
			r.mu.Unlock()
			return reason, true
		default:
			return SkipUpstreamFailed, true
		}
	}
	return SkipNone, false
}

func (r *run) skip(ctx context.Context, id graph.NodeID, reason SkipReason) {
	if !r.store.Transition(id, StatusPending, StatusSkipped) {
		return
	}
	n, ok := r.graph.Node(id)
	if !ok {
		return
	}
	r.finishSkip(ctx, n, reason)
}

func (r *run) finishSkip(ctx context.Context, n *graph.Node, reason SkipReason) {
	r.mu.Lock()
	r.skipReasons[n.ID] = reason
	r.stats.Skipped++
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Skipping node.", "node_id", n.ID.String(), "operation", n.OperationID, "reason", reason.String())
	r.emit(Event{Kind: EventNodeSkipped, Node: n.ID, Operation: n.OperationID, Reason: reason})
	r.engine.metrics.NodeFinished(n.OperationID, "skipped", 0)
	r.progress()
}

func (r *run) fail(ctx context.Context, n *graph.Node, err error, elapsed time.Duration) {
	var xerr *ExecutionError
	if !errors.As(err, &xerr) {
		xerr = &ExecutionError{Node: n.ID, Operation: n.OperationID, Kind: KindOperation, Err: err}
	}
	r.store.SetError(n.ID, xerr)
	r.store.Transition(n.ID, StatusRunning, StatusFailed)
	if r.settings.FailurePolicy == FailFast {
		r.failed.Store(true)
	}

	r.mu.Lock()
	r.stats.Failed++
	r.durations[n.ID] = elapsed
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Error("Node execution failed.", "error", xerr)
	r.emit(Event{Kind: EventNodeFailed, Node: n.ID, Operation: n.OperationID, Err: xerr, Duration: elapsed})
	r.engine.metrics.NodeFinished(n.OperationID, "failed", elapsed)
	r.progress()
}

// execute resolves a node's inputs and parameters and produces its outputs,
// from the cache when allowed.
func (r *run) execute(ctx context.Context, n *graph.Node) (map[string]value.Value, bool, error) {
	xerr := func(kind ErrorKind, port string, err error) error {
		return &ExecutionError{Node: n.ID, Operation: n.OperationID, Port: port, Kind: kind, Err: err}
	}

	meta, err := r.graph.OperationOf(n.ID)
	if err != nil {
		return nil, false, xerr(KindUnknown, "", err)
	}
	op, err := r.graph.Registry().Create(n.OperationID)
	if err != nil {
		return nil, false, xerr(KindUnknown, "", err)
	}
	params, err := r.graph.ResolvedParameters(n.ID)
	if err != nil {
		return nil, false, xerr(KindUnknown, "", err)
	}
	inputs, err := r.resolveInputs(n, meta)
	if err != nil {
		return nil, false, err
	}

	nodeCtx := ctx
	if r.settings.NodeTimeout > 0 {
		var cancel context.CancelFunc
		nodeCtx, cancel = context.WithTimeout(ctx, r.settings.NodeTimeout)
		defer cancel()
	}

	compute := func() (map[string]value.Value, error) {
		return r.invoke(nodeCtx, n, op, meta, inputs, params)
	}

	var (
		outputs map[string]value.Value
		hit     bool
	)
	if r.settings.UseCache && r.engine.cache != nil && meta.Deterministic {
		key := cache.NewKey(n.ID, n.OperationID, params, inputs)
		outputs, hit, err = r.engine.cache.GetOrCompute(nodeCtx, key, compute)
	} else {
		outputs, err = compute()
	}
	if err == nil {
		return outputs, hit, nil
	}

	var already *ExecutionError
	switch {
	case errors.As(err, &already):
		return nil, false, err
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil, false, err
	case nodeCtx.Err() == context.DeadlineExceeded:
		return nil, false, xerr(KindTimeout, "", fmt.Errorf("exceeded %s: %w", r.settings.NodeTimeout, err))
	}
	return nil, false, xerr(KindOperation, "", err)
}

func (r *run) resolveInputs(n *graph.Node, meta *operation.Metadata) (map[string]value.Value, error) {
	inputs := make(map[string]value.Value, len(meta.Inputs))
	for _, port := range meta.Inputs {
		if c, ok := r.graph.InputConnection(n.ID, port.Name); ok {
			v, ok := r.store.Output(c.From.Node, c.From.Port)
			if !ok {
				return nil, &ExecutionError{
					Node: n.ID, Operation: n.OperationID, Port: port.Name, Kind: KindMissingInput,
					Err: fmt.Errorf("%w: upstream produced no '%s' output", operation.ErrMissingInput, c.From.Port),
				}
			}
			inputs[port.Name] = v
			continue
		}
		if port.Default != nil {
			inputs[port.Name] = *port.Default
			continue
		}
		if port.Required {
			return nil, &ExecutionError{
				Node: n.ID, Operation: n.OperationID, Port: port.Name, Kind: KindMissingInput,
				Err: fmt.Errorf("%w: '%s' is not connected", operation.ErrMissingInput, port.Name),
			}
		}
	}
	return inputs, nil
}

// invoke calls the operation once, or per tile when its image input is too
// large for the memory limit.
func (r *run) invoke(
	ctx context.Context,
	n *graph.Node,
	op operation.Operation,
	meta *operation.Metadata,
	inputs, params map[string]value.Value,
) (outputs map[string]value.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ExecutionError{Node: n.ID, Operation: n.OperationID, Kind: KindPanic, Err: fmt.Errorf("%v", p)}
		}
	}()

	extent := operation.ExtentOf(op, params)
	if r.settings.AutoChunk && extent.Chunkable() {
		if in, out, ok := meta.ImagePorts(); ok {
			img, ok := inputs[in].AsImage()
			if ok && chunked.NeedsChunking(img.Width, img.Height, img.Channels, r.settings.MemoryLimit) {
				return r.invokeChunked(ctx, n, op, inputs, params, extent, in, out, img)
			}
		}
	}

	ec := operation.NewExecutionContext(ctx, n.DisplayName(), inputs, params)
	if err := op.Execute(ec); err != nil {
		return nil, err
	}
	return ec.Outputs(), nil
}

func (r *run) invokeChunked(
	ctx context.Context,
	n *graph.Node,
	op operation.Operation,
	inputs, params map[string]value.Value,
	extent operation.SpatialExtent,
	inPort, outPort string,
	img *value.Image,
) (map[string]value.Value, error) {
	ctxlog.FromContext(ctx).Debug("Routing node through the chunked processor.",
		"width", img.Width,
		"height", img.Height,
		"extent", extent.String(),
		"image_size", humanize.IBytes(uint64(img.SizeBytes())),
		"memory_limit", humanize.IBytes(uint64(r.settings.MemoryLimit)),
	)

	fn := func(tctx context.Context, tile *value.Image) (*value.Image, error) {
		ec := operation.NewExecutionContext(tctx, n.DisplayName(), inputs, params)
		ec.SetInput(inPort, value.ImageValue(tile))
		if err := op.Execute(ec); err != nil {
			return nil, err
		}
		res, ok := ec.Outputs()[outPort].AsImage()
		if !ok {
			return nil, fmt.Errorf("%w: output '%s' is not an image", operation.ErrWrongType, outPort)
		}
		return res, nil
	}

	stitched, _, err := r.processor.ProcessImage(ctx, img, extent, fn)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		return nil, &ExecutionError{Node: n.ID, Operation: n.OperationID, Port: inPort, Kind: KindChunk, Err: err}
	}

	r.mu.Lock()
	r.stats.Chunked++
	r.mu.Unlock()
	return map[string]value.Value{outPort: value.ImageValue(stitched)}, nil
}
