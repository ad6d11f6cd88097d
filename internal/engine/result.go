package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/inmemorystore"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Status is a node's lifecycle state within a run.
type Status = inmemorystore.Status

const (
	StatusPending   = inmemorystore.StatusPending
	StatusRunning   = inmemorystore.StatusRunning
	StatusCompleted = inmemorystore.StatusCompleted
	StatusFailed    = inmemorystore.StatusFailed
	StatusSkipped   = inmemorystore.StatusSkipped
)

// ErrCancelled is returned, wrapped with the context's error, when a run
// stops because its context ended.
var ErrCancelled = errors.New("execution cancelled")

// ErrorKind classifies execution errors.
type ErrorKind string

const (
	KindOperation    ErrorKind = "operation"
	KindMissingInput ErrorKind = "missing_input"
	KindChunk        ErrorKind = "chunk"
	KindTimeout      ErrorKind = "timeout"
	KindPanic        ErrorKind = "panic"
	KindUnknown      ErrorKind = "unknown_operation"
)

// ExecutionError wraps a node's failure with the node that produced it.
type ExecutionError struct {
	Node      graph.NodeID
	Operation string
	Port      string
	Kind      ErrorKind
	Err       error
}

func (e *ExecutionError) Error() string {
	where := fmt.Sprintf("node %s (%s)", e.Node, e.Operation)
	if e.Port != "" {
		where += fmt.Sprintf(" port '%s'", e.Port)
	}
	return fmt.Sprintf("%s: %s: %v", where, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Stats counts node outcomes.
type Stats struct {
	Executed int
	Cached   int
	Skipped  int
	Failed   int
	Chunked  int
}

// Result is everything a run produced.
type Result struct {
	Success     bool
	Outputs     map[graph.NodeID]map[string]value.Value
	Errors      map[graph.NodeID]error
	Statuses    map[graph.NodeID]Status
	SkipReasons map[graph.NodeID]SkipReason
	CacheHits   map[graph.NodeID]bool
	Durations   map[graph.NodeID]time.Duration
	// Terminal holds the outputs of completed nodes without outgoing
	// connections.
	Terminal map[graph.NodeID]map[string]value.Value
	Stats    Stats
	Elapsed  time.Duration
}

// Output returns one output value of a completed node.
func (r *Result) Output(node graph.NodeID, port string) (value.Value, bool) {
	v, ok := r.Outputs[node][port]
	return v, ok
}
