// Package s3 uploads images to object storage through pre-signed URLs.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/http_client"
	"github.com/specialistvlad/pixelgrid/modules/imageio"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Formats lists the encodings upload_image can send.
var Formats = []string{"png", "jpeg", "gif", "bmp", "tiff"}

// OnRunUploadImage encodes the input image and PUTs it to 'upload_url'.
func OnRunUploadImage(ec *operation.ExecutionContext) error {
	img, err := ec.InputImage("image")
	if err != nil {
		return err
	}
	url, err := ec.ParamString("upload_url")
	if err != nil {
		return err
	}
	format, err := ec.ParamString("format")
	if err != nil {
		return err
	}
	raw, err := ec.ParamString("timeout")
	if err != nil {
		return err
	}
	timeout, err := http_client.ParseTimeout(raw)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	ext := "." + strings.ToLower(format)
	var body bytes.Buffer
	if err := imageio.Encode(&body, ext, img); err != nil {
		return fmt.Errorf("failed to encode image as %s: %w", format, err)
	}

	ctx := ec.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	size := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create S3 upload request: %w", err)
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	logger.Info("Uploading image to S3", "size", humanize.IBytes(uint64(size)), "contentType", contentType)

	resp, err := http_client.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded image", "status", resp.Status)

	ec.SetOutput("status", value.String(resp.Status))
	ec.SetOutput("bytes", value.Int(size))
	return nil
}

func uploadImage() operation.Operation {
	formats := make([]value.Value, len(Formats))
	for i, f := range Formats {
		formats[i] = value.String(f)
	}
	return &operation.Func{
		Meta: operation.Metadata{
			ID:          "upload_image",
			Name:        "Upload Image",
			Category:    operation.CategoryOutput,
			Description: "Encodes an image and uploads it to a pre-signed S3 URL.",
			Version:     "1.0.0",
			Tags:        []string{"io", "s3", "remote", "write"},
			Inputs:      []schema.PortDefinition{schema.Input("image", value.TypeImage)},
			Outputs: []schema.PortDefinition{
				schema.Output("status", value.TypeString),
				schema.Output("bytes", value.TypeInteger),
			},
			Parameters: []schema.ParameterDefinition{
				schema.Param("upload_url", value.TypeString, value.String("")).
					WithConstraint(schema.Custom("an http:// or https:// URL", http_client.CheckURL)),
				schema.Param("format", value.TypeString, value.String("png")).
					WithConstraint(schema.OneOf(formats...)),
				schema.Param("timeout", value.TypeString, value.String("")).
					WithConstraint(schema.Custom("a positive duration such as 10s", http_client.CheckTimeout)),
			},
			Deterministic: false,
			Extent:        operation.GlobalExtent(),
		},
		Run:   OnRunUploadImage,
		Check: http_client.RequireURL("upload_url"),
	}
}

// Register registers upload_image with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(uploadImage)
}
