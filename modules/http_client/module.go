package http_client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/imageio"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunFetchImage downloads 'url' and decodes the body as an image.
func OnRunFetchImage(ec *operation.ExecutionContext) error {
	url, err := ec.ParamString("url")
	if err != nil {
		return err
	}
	raw, err := ec.ParamString("timeout")
	if err != nil {
		return err
	}
	timeout, err := ParseTimeout(raw)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	ctx := ec.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Fetching image.", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s failed with status: %s", url, resp.Status)
	}

	img, format, err := imageio.Decode(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	logger.Debug("Received image.", "status", resp.Status, "format", format,
		"width", img.Width, "height", img.Height, "memory", humanize.IBytes(uint64(img.SizeBytes())))

	ec.SetOutput("image", value.ImageValue(img))
	ec.SetOutput("format", value.String(format))
	ec.SetOutput("status_code", value.Int(int64(resp.StatusCode)))
	return nil
}

// CheckURL accepts http and https URLs. An empty string passes; RequireURL
// rejects it once the node is validated.
func CheckURL(v value.Value) error {
	s, _ := v.AsString()
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}

// RequireURL is a node check that fails when the named parameter is empty.
func RequireURL(param string) func(*operation.ValidationContext) error {
	return func(vc *operation.ValidationContext) error {
		if s, _ := vc.Params[param].AsString(); s == "" {
			return fmt.Errorf("parameter '%s' must be set", param)
		}
		return nil
	}
}

// CheckTimeout validates a duration string parameter.
func CheckTimeout(v value.Value) error {
	s, _ := v.AsString()
	_, err := ParseTimeout(s)
	return err
}

func fetchImage() operation.Operation {
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "fetch_image",
			Name:        "Fetch Image",
			Category:    operation.CategoryInput,
			Description: "Downloads an image over HTTP(S).",
			Version:     "1.0.0",
			Tags:        []string{"io", "http", "remote"},
			Outputs: []schema.PortDefinition{
				schema.Output("image", value.TypeImage),
				schema.Output("format", value.TypeString),
				schema.Output("status_code", value.TypeInteger),
			},
			Parameters: []schema.ParameterDefinition{
				schema.Param("url", value.TypeString, value.String("")).
					WithConstraint(schema.Custom("an http:// or https:// URL", CheckURL)),
				schema.Param("timeout", value.TypeString, value.String("")).
					WithConstraint(schema.Custom("a positive duration such as 10s", CheckTimeout)),
			},
			// Remote content can change between runs.
			Deterministic: false,
			Extent:        operation.GlobalExtent(),
		},
		Run:   OnRunFetchImage,
		Check: RequireURL("url"),
	}
}

// Register registers fetch_image with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(fetchImage)
}
