package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Validate checks that every registered operation describes itself
// consistently: unique port and parameter names, defaults that satisfy
// their own declarations, and a usable spatial extent.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, meta := range r.List() {
		errs = append(errs, validateMetadata(meta)...)

		for _, p := range meta.Inputs {
			if p.Type.IsAny() {
				logger.Debug("Operation has an input of type 'any', which disables static type checking for it.", "operation", meta.ID, "input", p.Name)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func validateMetadata(meta *operation.Metadata) []string {
	var errs []string

	seen := make(map[string]struct{})
	claim := func(kind, name string) {
		key := kind + ":" + name
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Sprintf("operation '%s': %s '%s' declared twice", meta.ID, kind, name))
			return
		}
		seen[key] = struct{}{}
	}

	for _, p := range meta.Inputs {
		claim("input", p.Name)
		if p.Default != nil && !p.Default.IsNone() && !value.Conforms(*p.Default, p.Type) {
			errs = append(errs, fmt.Sprintf("operation '%s', input '%s': default %s does not match type %s", meta.ID, p.Name, p.Default, p.Type))
		}
	}
	for _, p := range meta.Outputs {
		claim("output", p.Name)
	}
	for _, p := range meta.Parameters {
		claim("parameter", p.Name)
		if err := p.Check(p.Default); err != nil {
			errs = append(errs, fmt.Sprintf("operation '%s': default is invalid: %v", meta.ID, err))
		}
	}

	if meta.Extent.Kind == operation.Neighborhood && meta.Extent.Radius < 0 {
		errs = append(errs, fmt.Sprintf("operation '%s': negative neighborhood radius", meta.ID))
	}
	return errs
}
