package arith

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunAdd computes value + other + addend.
func OnRunAdd(ec *operation.ExecutionContext) error {
	a, err := ec.InputInt("value")
	if err != nil {
		return err
	}
	b, err := ec.InputInt("other")
	if err != nil {
		return err
	}
	addend, err := ec.ParamInt("addend")
	if err != nil {
		return err
	}
	ec.SetOutput("result", value.Int(a+b+addend))
	return nil
}

// OnRunMultiply computes value * other * factor.
func OnRunMultiply(ec *operation.ExecutionContext) error {
	a, err := ec.InputFloat("value")
	if err != nil {
		return err
	}
	b, err := ec.InputFloat("other")
	if err != nil {
		return err
	}
	factor, err := ec.ParamFloat("factor")
	if err != nil {
		return err
	}
	ec.SetOutput("result", value.Float(a*b*factor))
	return nil
}

func add() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "add",
			Name:        "Add",
			Category:    operation.CategoryMath,
			Description: "Adds two integers and a constant addend.",
			Version:     "1.0.0",
			Tags:        []string{"math", "sum"},
			Inputs: []schema.PortDefinition{
				schema.Input("value", value.TypeInteger),
				schema.OptionalInput("other", value.TypeInteger, value.Int(0)),
			},
			Outputs:       []schema.PortDefinition{schema.Output("result", value.TypeInteger)},
			Parameters:    []schema.ParameterDefinition{schema.Param("addend", value.TypeInteger, value.Int(0))},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunAdd,
	}
}

func multiply() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "multiply",
			Name:        "Multiply",
			Category:    operation.CategoryMath,
			Description: "Multiplies two floats and a constant factor.",
			Version:     "1.0.0",
			Tags:        []string{"math", "product"},
			Inputs: []schema.PortDefinition{
				schema.Input("value", value.TypeFloat),
				schema.OptionalInput("other", value.TypeFloat, value.Float(1)),
			},
			Outputs:       []schema.PortDefinition{schema.Output("result", value.TypeFloat)},
			Parameters:    []schema.ParameterDefinition{schema.Param("factor", value.TypeFloat, value.Float(1))},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunMultiply,
	}
}

// Register registers the arithmetic operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(add)
	r.Register(multiply)
}
