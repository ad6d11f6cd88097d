package output

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunOutput forwards its input unchanged so that the value shows up among
// the run's terminal outputs.
func OnRunOutput(ec *operation.ExecutionContext) error {
	v, ok := ec.Input("value")
	if !ok {
		return operation.ErrMissingInput
	}
	ec.SetOutput("value", v)
	return nil
}

func outputOp() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:            "output",
			Name:          "Output",
			Category:      operation.CategoryOutput,
			Description:   "Marks a value as a result of the graph.",
			Version:       "1.0.0",
			Tags:          []string{"output", "sink", "preview"},
			Inputs:        []schema.PortDefinition{schema.Input("value", value.TypeAny)},
			Outputs:       []schema.PortDefinition{schema.Output("value", value.TypeAny)},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunOutput,
	}
}

// Register registers the output operation with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(outputOp)
}
