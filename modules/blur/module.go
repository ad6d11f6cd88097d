package blur

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// BoxBlur averages each sample over a (2r+1)x(2r+1) window clipped to the
// image. The summation order is fixed so that a tile padded by r pixels
// produces exactly the same core pixels as the whole image.
type BoxBlur struct {
	meta operation.Metadata
}

func newBoxBlur() operation.Operation {
	return &BoxBlur{meta: operation.Metadata{
		ID:          "box_blur",
		Name:        "Box Blur",
		Category:    operation.CategoryBlur,
		Description: "Averages every pixel with its square neighborhood.",
		Version:     "1.0.0",
		Tags:        []string{"blur", "smooth", "filter"},
		Inputs:      []schema.PortDefinition{schema.Input("image", value.TypeImage)},
		Outputs:     []schema.PortDefinition{schema.Output("image", value.TypeImage)},
		Parameters: []schema.ParameterDefinition{
			schema.Param("radius", value.TypeInteger, value.Int(1)).
				WithConstraint(schema.Range(0, 64)).
				WithDescription("Half width of the averaging window in pixels."),
		},
		Deterministic: true,
		Extent:        operation.NeighborhoodExtent(1),
	}}
}

func (b *BoxBlur) Metadata() *operation.Metadata { return &b.meta }

// Extent implements operation.ExtentResolver.
func (b *BoxBlur) Extent(params map[string]value.Value) operation.SpatialExtent {
	r, ok := params["radius"].AsInt()
	if !ok {
		return b.meta.Extent
	}
	return operation.NeighborhoodExtent(int(r))
}

func (b *BoxBlur) Validate(vc *operation.ValidationContext) error {
	return nil
}

func (b *BoxBlur) Execute(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	r, err := ec.ParamInt("radius")
	if err != nil {
		return err
	}
	ec.SetOutput("image", value.ImageValue(boxBlur(img, int(r))))
	return nil
}

func boxBlur(src *value.Image, r int) *value.Image {
	if r == 0 {
		return src.Clone()
	}
	out := value.NewImage(src.Width, src.Height, src.Channels)
	out.Format = src.Format
	for y := 0; y < src.Height; y++ {
		y0, y1 := max(y-r, 0), min(y+r, src.Height-1)
		for x := 0; x < src.Width; x++ {
			x0, x1 := max(x-r, 0), min(x+r, src.Width-1)
			count := float32((y1 - y0 + 1) * (x1 - x0 + 1))
			for c := 0; c < src.Channels; c++ {
				var sum float32
				for yy := y0; yy <= y1; yy++ {
					for xx := x0; xx <= x1; xx++ {
						sum += src.At(xx, yy, c)
					}
				}
				out.Set(x, y, c, sum/count)
			}
		}
	}
	return out
}

// Register registers the blur operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(newBoxBlur)
}
