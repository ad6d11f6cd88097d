package inmemorystore

import (
	"sync"

	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Status is a node's position in its run lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// Store is the per-run node state.
type Store struct {
	states  sync.Map // graph.NodeID -> Status
	outputs sync.Map // graph.NodeID -> map[string]value.Value
	errors  sync.Map // graph.NodeID -> error
}

// New creates a store with every given node Pending.
func New(nodes []graph.NodeID) *Store {
	s := &Store{}
	for _, id := range nodes {
		s.states.Store(id, StatusPending)
	}
	return s
}

// Status returns the node's status, Pending when unknown.
func (s *Store) Status(id graph.NodeID) Status {
	st, ok := s.states.Load(id)
	if !ok {
		return StatusPending
	}
	return st.(Status)
}

// Transition moves id from one status to another and reports whether it
// was in the expected status.
func (s *Store) Transition(id graph.NodeID, from, to Status) bool {
	if from == StatusPending {
		if _, loaded := s.states.LoadOrStore(id, to); !loaded {
			return true
		}
	}
	return s.states.CompareAndSwap(id, from, to)
}

// SetOutputs records a completed node's outputs.
func (s *Store) SetOutputs(id graph.NodeID, outputs map[string]value.Value) {
	s.outputs.Store(id, outputs)
}

// Outputs returns the outputs of a completed node.
func (s *Store) Outputs(id graph.NodeID) (map[string]value.Value, bool) {
	out, ok := s.outputs.Load(id)
	if !ok {
		return nil, false
	}
	return out.(map[string]value.Value), true
}

// Output returns one output port value of a completed node.
func (s *Store) Output(id graph.NodeID, port string) (value.Value, bool) {
	out, ok := s.Outputs(id)
	if !ok {
		return value.None(), false
	}
	v, ok := out[port]
	return v, ok
}

// SetError records why a node failed.
func (s *Store) SetError(id graph.NodeID, err error) {
	s.errors.Store(id, err)
}

// Error returns the recorded failure of a node, or nil.
func (s *Store) Error(id graph.NodeID) error {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil
	}
	return err.(error)
}

// Statuses returns a snapshot of every node's status.
func (s *Store) Statuses() map[graph.NodeID]Status {
	out := make(map[graph.NodeID]Status)
	s.states.Range(func(k, v any) bool {
		out[k.(graph.NodeID)] = v.(Status)
		return true
	})
	return out
}

// AllOutputs returns a snapshot of every completed node's outputs.
func (s *Store) AllOutputs() map[graph.NodeID]map[string]value.Value {
	out := make(map[graph.NodeID]map[string]value.Value)
	s.outputs.Range(func(k, v any) bool {
		out[k.(graph.NodeID)] = v.(map[string]value.Value)
		return true
	})
	return out
}

// Errors returns a snapshot of every recorded failure.
func (s *Store) Errors() map[graph.NodeID]error {
	out := make(map[graph.NodeID]error)
	s.errors.Range(func(k, v any) bool {
		out[k.(graph.NodeID)] = v.(error)
		return true
	})
	return out
}
