package print

import (
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunPrint logs its input and passes it through.
func OnRunPrint(ec *operation.ExecutionContext) error {
	v, ok := ec.Input("value")
	if !ok {
		v = value.None()
	}
	label, err := ec.ParamString("label")
	if err != nil {
		return err
	}
	if label == "" {
		label = ec.Node()
	}

	ctxlog.FromContext(ec.Context()).Info("Printing input", "label", label, "type", value.TypeOf(v), "value", v.String())
	ec.SetOutput("value", v)
	return nil
}

func printOp() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "print",
			Name:        "Print",
			Category:    operation.CategoryUtility,
			Description: "Logs a value and forwards it unchanged.",
			Version:     "1.0.0",
			Tags:        []string{"debug", "log"},
			Inputs:      []schema.PortDefinition{schema.OptionalInput("value", value.TypeAny, value.None())},
			Outputs:     []schema.PortDefinition{schema.Output("value", value.TypeAny)},
			Parameters: []schema.ParameterDefinition{
				schema.Param("label", value.TypeString, value.String("")).
					WithDescription("prefix for the log line; defaults to the node name"),
			},
			// Printing is a side effect that must happen on every run.
			Deterministic: false,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunPrint,
	}
}

// Register registers the print operation with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(printOp)
}
