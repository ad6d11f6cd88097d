package testutil

import (
	"sync"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// SleeperModule registers a "sleep" operation for concurrency tests. Each
// call sleeps and records its start and end time under its 'id' parameter.
type SleeperModule struct {
	mu             sync.Mutex
	executionTimes map[string]*ExecutionRecord
	sleepDuration  time.Duration
}

// NewSleeperModule creates a sleeper whose calls take sleep each.
func NewSleeperModule(sleep time.Duration) *SleeperModule {
	return &SleeperModule{
		executionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Record returns the timing of the call with the given id.
func (m *SleeperModule) Record(id string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.executionTimes[id]
	return r, ok
}

func (m *SleeperModule) Register(r *registry.Registry) {
	r.Register(func() operation.Operation {
		return &operation.Func{
			Meta: operation.Metadata{
				ID:       "sleep",
				Name:     "Sleep",
				Category: operation.CategoryUtility,
				Version:  "1.0.0",
				Inputs:   []schema.PortDefinition{schema.OptionalInput("value", value.TypeAny, value.None())},
				Outputs:  []schema.PortDefinition{schema.Output("value", value.TypeAny)},
				Parameters: []schema.ParameterDefinition{
					schema.Param("id", value.TypeString, value.String("")),
				},
				Extent: operation.GlobalExtent(),
			},
			Run: func(ec *operation.ExecutionContext) error {
				id, err := ec.ParamString("id")
				if err != nil {
					return err
				}

				start := time.Now()
				select {
				case <-time.After(m.sleepDuration):
				case <-ec.Context().Done():
					return ec.Context().Err()
				}
				end := time.Now()

				m.mu.Lock()
				m.executionTimes[id] = &ExecutionRecord{Start: start, End: end}
				m.mu.Unlock()

				v, ok := ec.Input("value")
				if !ok {
					v = value.String(id)
				}
				ec.SetOutput("value", v)
				return nil
			},
		}
	})
}
