package constant

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunConstant copies the 'value' parameter to the 'value' output.
func OnRunConstant(ec *operation.ExecutionContext) error {
	ec.SetOutput("value", ec.Param("value"))
	return nil
}

// OnRunSolidImage fills a new image with the 'color' parameter.
func OnRunSolidImage(ec *operation.ExecutionContext) error {
	w, err := ec.ParamInt("width")
	if err != nil {
		return err
	}
	h, err := ec.ParamInt("height")
	if err != nil {
		return err
	}
	c, err := ec.ParamColor("color")
	if err != nil {
		return err
	}

	img := value.NewImage(int(w), int(h), 4)
	px := [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], px[:])
	}
	ec.SetOutput("image", value.ImageValue(img))
	return nil
}

func constant(id, name string, t value.PortType, def value.Value) operation.Factory {
	return func() operation.Operation {
		return &operation.Func{
			Meta: operation.Metadata{
				ID:            id,
				Name:          name,
				Category:      operation.CategoryInput,
				Description:   "Emits a fixed " + t.String() + " value.",
				Version:       "1.0.0",
				Tags:          []string{"constant", "source"},
				Outputs:       []schema.PortDefinition{schema.Output("value", t)},
				Parameters:    []schema.ParameterDefinition{schema.Param("value", t, def)},
				Deterministic: true,
				Extent:        operation.GlobalExtent(),
			},
			Run: OnRunConstant,
		}
	}
}

func solidImage() operation.Operation {
	size := schema.Range(1, 1<<16)
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "solid_image",
			Name:        "Solid Image",
			Category:    operation.CategoryInput,
			Description: "Creates an RGBA image filled with one color.",
			Version:     "1.0.0",
			Tags:        []string{"generate", "source"},
			Outputs:     []schema.PortDefinition{schema.Output("image", value.TypeImage)},
			Parameters: []schema.ParameterDefinition{
				schema.Param("width", value.TypeInteger, value.Int(256)).WithConstraint(size),
				schema.Param("height", value.TypeInteger, value.Int(256)).WithConstraint(size),
				schema.Param("color", value.TypeColor, value.ColorValue(value.Color{A: 255})),
			},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunSolidImage,
	}
}

// Register registers the constant operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(constant("constant_int", "Integer", value.TypeInteger, value.Int(0)))
	r.Register(constant("constant_float", "Float", value.TypeFloat, value.Float(0)))
	r.Register(constant("constant_string", "String", value.TypeString, value.String("")))
	r.Register(solidImage)
}
