package inmemorystore

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusDefaultsAndTransitions(t *testing.T) {
	t.Parallel()
	id := graph.NewNodeID()
	s := New([]graph.NodeID{id})

	assert.Equal(t, StatusPending, s.Status(id))
	assert.Equal(t, StatusPending, s.Status(graph.NewNodeID()), "unknown nodes are pending")

	require.True(t, s.Transition(id, StatusPending, StatusRunning))
	assert.False(t, s.Transition(id, StatusPending, StatusRunning), "already running")
	require.True(t, s.Transition(id, StatusRunning, StatusCompleted))
	assert.True(t, s.Status(id).Terminal())
	assert.Equal(t, "completed", s.Status(id).String())
}

func TestTransition_UnknownNode(t *testing.T) {
	t.Parallel()
	s := New(nil)
	id := graph.NewNodeID()
	assert.True(t, s.Transition(id, StatusPending, StatusSkipped))
	assert.Equal(t, StatusSkipped, s.Status(id))
}

func TestOutputsAndErrors(t *testing.T) {
	t.Parallel()
	id := graph.NewNodeID()
	s := New([]graph.NodeID{id})

	_, ok := s.Outputs(id)
	assert.False(t, ok)
	assert.Nil(t, s.Error(id))

	s.SetOutputs(id, map[string]value.Value{"result": value.Int(8)})
	v, ok := s.Output(id, "result")
	require.True(t, ok)
	assert.True(t, v.Equal(value.Int(8)))
	_, ok = s.Output(id, "missing")
	assert.False(t, ok)

	boom := errors.New("boom")
	s.SetError(id, boom)
	assert.Equal(t, boom, s.Error(id))
	assert.Len(t, s.Errors(), 1)
	assert.Len(t, s.AllOutputs(), 1)
}

func TestConcurrentTransitions_SingleWinner(t *testing.T) {
	t.Parallel()
	id := graph.NewNodeID()
	s := New([]graph.NodeID{id})

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Transition(id, StatusPending, StatusRunning) {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	ids := make([]graph.NodeID, 50)
	for i := range ids {
		ids[i] = graph.NewNodeID()
	}
	s := New(ids)

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Transition(id, StatusPending, StatusRunning)
			s.SetOutputs(id, map[string]value.Value{"i": value.Int(int64(i))})
			s.Transition(id, StatusRunning, StatusCompleted)
		}()
	}
	wg.Wait()

	statuses := s.Statuses()
	require.Len(t, statuses, len(ids))
	for _, st := range statuses {
		assert.Equal(t, StatusCompleted, st)
	}
	assert.Len(t, s.AllOutputs(), len(ids))
}
