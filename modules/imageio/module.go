package imageio

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered with image.Decode.
	_ "golang.org/x/image/webp"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Extensions lists the file extensions save_image can write.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

// OnRunLoadImage decodes the file named by 'path'.
func OnRunLoadImage(ec *operation.ExecutionContext) error {
	path, err := ec.ParamString("path")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	ec.SetOutput("image", value.ImageValue(img))
	ec.SetOutput("format", value.String(format))
	return nil
}

// Decode reads any registered image format into an engine image.
func Decode(r io.Reader) (*value.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return value.FromStdImage(img), format, nil
}

// OnRunSaveImage encodes the input image to 'path', choosing the codec
// from the file extension.
func OnRunSaveImage(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	path, err := ec.ParamString("path")
	if err != nil {
		return err
	}
	overwrite, err := ec.ParamBool("overwrite")
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists and overwrite is disabled: %s", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := Encode(f, filepath.Ext(path), img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ec.SetOutput("path", value.String(path))
	return nil
}

// Encode writes img in the format named by ext (".png", ".jpg", ...).
func Encode(w io.Writer, ext string, src *value.Image) error {
	img := src.ToStdImage()
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image extension %q", ext)
}

func checkExtension(vc *operation.ValidationContext) error {
	path, _ := vc.Params["path"].AsString()
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return nil
		}
	}
	return fmt.Errorf("cannot write %q: supported extensions are %s", path, strings.Join(Extensions, ", "))
}

func loadImage() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "load_image",
			Name:        "Load Image",
			Category:    operation.CategoryInput,
			Description: "Reads an image file (PNG, JPEG, GIF, BMP, TIFF, WebP).",
			Version:     "1.0.0",
			Tags:        []string{"io", "file", "read"},
			Outputs: []schema.PortDefinition{
				schema.Output("image", value.TypeImage),
				schema.Output("format", value.TypeString),
			},
			Parameters: []schema.ParameterDefinition{
				schema.Param("path", value.TypeString, value.String("")).
					WithPath(schema.PathRead),
			},
			Deterministic: true,
			Extent:        operation.GlobalExtent(),
		},
		Run: OnRunLoadImage,
	}
}

func saveImage() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "save_image",
			Name:        "Save Image",
			Category:    operation.CategoryOutput,
			Description: "Writes an image file, choosing the format by extension.",
			Version:     "1.0.0",
			Tags:        []string{"io", "file", "write"},
			Inputs:      []schema.PortDefinition{schema.Input("image", value.TypeImage)},
			Outputs:     []schema.PortDefinition{schema.Output("path", value.TypeString)},
			Parameters: []schema.ParameterDefinition{
				schema.Param("path", value.TypeString, value.String("")).
					WithPath(schema.PathWrite),
				schema.Param("overwrite", value.TypeBoolean, value.Bool(true)),
			},
			// Writing a file is a side effect that must happen on every run.
			Deterministic: false,
			Extent:        operation.GlobalExtent(),
		},
		Run:   OnRunSaveImage,
		Check: checkExtension,
	}
}

// Register registers the file operations with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(loadImage)
	r.Register(saveImage)
}
