package adjust

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// colorChannels is the number of leading channels that carry color; a
// trailing alpha channel is left untouched.
func colorChannels(img *value.Image) int {
	switch img.Channels {
	case 2, 4:
		return img.Channels - 1
	}
	return img.Channels
}

func mapColor(src *value.Image, fn func(float32) float32) *value.Image {
	out := src.Clone()
	n := colorChannels(src)
	for i := 0; i < len(out.Pix); i += src.Channels {
		for c := 0; c < n; c++ {
			out.Pix[i+c] = fn(out.Pix[i+c])
		}
	}
	return out
}

// OnRunBrightness scales every color sample by 'factor'.
func OnRunBrightness(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	factor, err := ec.ParamFloat("factor")
	if err != nil {
		return err
	}
	f := float32(factor)
	ec.SetOutput("image", value.ImageValue(mapColor(img, func(v float32) float32 {
		return min(v*f, 1)
	})))
	return nil
}

// OnRunInvert replaces every color sample v with 1-v.
func OnRunInvert(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	ec.SetOutput("image", value.ImageValue(mapColor(img, func(v float32) float32 {
		return 1 - v
	})))
	return nil
}

func pointwise(id, name, desc string, run func(*operation.ExecutionContext) error, params ...schema.ParameterDefinition) operation.Factory {
	return func() operation.Operation {
		return &operation.Func{
			Meta: operation.Metadata{
				ID:            id,
				Name:          name,
				Category:      operation.CategoryAdjust,
				Description:   desc,
				Version:       "1.0.0",
				Tags:          []string{"adjust", "color"},
				Inputs:        []schema.PortDefinition{schema.Input("image", value.TypeImage)},
				Outputs:       []schema.PortDefinition{schema.Output("image", value.TypeImage)},
				Parameters:    params,
				Deterministic: true,
				Extent:        operation.PointwiseExtent(),
			},
			Run: run,
		}
	}
}

// Register registers the adjustment operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(pointwise("brightness", "Brightness", "Scales color channels by a factor.", OnRunBrightness,
		schema.Param("factor", value.TypeFloat, value.Float(1)).
			WithConstraint(schema.Range(0, 10)).
			WithDescription("Multiplier applied to every color channel."),
	))
	r.Register(pointwise("invert", "Invert", "Inverts color channels.", OnRunInvert))
}
