package engine

import (
	"time"

	"github.com/specialistvlad/pixelgrid/internal/graph"
)

// EventKind identifies a progress event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventNodeStarted
	EventNodeCompleted
	EventNodeSkipped
	EventNodeFailed
	EventProgress
	EventCompleted
	EventCancelled
)

var eventNames = [...]string{
	"started", "node_started", "node_completed", "node_skipped",
	"node_failed", "progress", "completed", "cancelled",
}

func (k EventKind) String() string {
	if int(k) >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// SkipReason explains why a node did not execute.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipDisabled
	// SkipCached means the outputs came from the cache; the node counts as
	// completed.
	SkipCached
	SkipUpstreamFailed
	SkipFailFast
	SkipCancelled
)

var skipNames = [...]string{"", "disabled", "cached", "upstream_failed", "fail_fast", "cancelled"}

func (r SkipReason) String() string {
	if int(r) >= 0 && int(r) < len(skipNames) {
		return skipNames[r]
	}
	return "unknown"
}

// Event is one progress notification. Fields not relevant to Kind are zero.
type Event struct {
	Kind      EventKind
	Node      graph.NodeID
	Operation string
	Reason    SkipReason
	Err       error
	Duration  time.Duration
	Done      int
	Total     int
	// Elapsed and Remaining are set on EventProgress. Remaining is an
	// estimate from the average time per finished node.
	Elapsed   time.Duration
	Remaining time.Duration
}

// Fraction is Done over Total, or 0 for an empty graph.
func (e Event) Fraction() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Done) / float64(e.Total)
}

// Sink receives events. The engine delivers them one at a time, so a sink
// need not be safe for concurrent use.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }
