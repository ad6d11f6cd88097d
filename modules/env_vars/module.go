package env_vars

import (
	"os"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunEnv reads the environment variable 'name', falling back to 'default'.
func OnRunEnv(ec *operation.ExecutionContext) error {
	name, err := ec.ParamString("name")
	if err != nil {
		return err
	}
	def, err := ec.ParamString("default")
	if err != nil {
		return err
	}

	v, set := os.LookupEnv(name)
	if !set {
		v = def
	}
	ec.SetOutput("value", value.String(v))
	ec.SetOutput("set", value.Bool(set))
	return nil
}

func envOp() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "env",
			Name:        "Environment Variable",
			Category:    operation.CategoryInput,
			Description: "Reads a process environment variable.",
			Version:     "1.0.0",
			Tags:        []string{"env", "source", "config"},
			Outputs: []schema.PortDefinition{
				schema.Output("value", value.TypeString),
				schema.Output("set", value.TypeBoolean),
			},
			Parameters: []schema.ParameterDefinition{
				schema.Param("name", value.TypeString, value.String("PATH")).
					WithConstraint(schema.Pattern(`^[A-Za-z_][A-Za-z0-9_]*$`)),
				schema.Param("default", value.TypeString, value.String("")),
			},
			// The environment is read fresh on every run.
			Deterministic: false,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunEnv,
	}
}

// Register registers the env operation with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(envOp)
}
