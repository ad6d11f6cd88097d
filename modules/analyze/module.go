package analyze

import (
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunImageMean reports the mean of all samples and the image dimensions.
func OnRunImageMean(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	var sum float64
	for _, v := range img.Pix {
		sum += float64(v)
	}
	mean := 0.0
	if len(img.Pix) > 0 {
		mean = sum / float64(len(img.Pix))
	}
	ec.SetOutput("mean", value.Float(mean))
	ec.SetOutput("width", value.Int(int64(img.Width)))
	ec.SetOutput("height", value.Int(int64(img.Height)))
	return nil
}

func imageMean() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "image_mean",
			Name:        "Image Mean",
			Category:    operation.CategoryAnalyze,
			Description: "Computes the mean sample value of an image.",
			Version:     "1.0.0",
			Tags:        []string{"analyze", "statistics"},
			Inputs:      []schema.PortDefinition{schema.Input("image", value.TypeImage)},
			Outputs: []schema.PortDefinition{
				schema.Output("mean", value.TypeFloat),
				schema.Output("width", value.TypeInteger),
				schema.Output("height", value.TypeInteger),
			},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunImageMean,
	}
}

// Register registers the analysis operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(imageMean)
}
