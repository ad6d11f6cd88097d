package hcl_adapter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional expression fields with
// zero-width placeholders, so a nil check is not enough: a real attribute
// occupies bytes in the file.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// decodeParameters evaluates a node's parameters object and coerces every
// entry to the type its operation declares. Entries the operation does not
// declare are passed through unchanged so the graph reports them.
func decodeParameters(ctx context.Context, expr hcl.Expression, meta *operation.Metadata) (map[string]value.Value, error) {
	out := make(map[string]value.Value)
	if !isExprDefined(ctx, expr, "parameters") {
		return out, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid parameters: %w", diags)
	}
	raw, err := value.FromCty(val)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if raw.IsNone() {
		return out, nil
	}
	entries, ok := raw.AsMap()
	if !ok {
		return nil, fmt.Errorf("parameters must be an object, got %s", raw.Kind())
	}

	for _, name := range slices.Sorted(maps.Keys(entries)) {
		v := entries[name]
		def, ok := meta.Parameter(name)
		if !ok {
			out[name] = v
			continue
		}
		coerced, err := value.Coerce(v, def.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", name, err)
		}
		out[name] = coerced
	}
	return out, nil
}

// splitEndpoint parses "<node>.<port>". The port is everything after the last
// dot, so node labels may contain dots.
func splitEndpoint(s string) (node, port string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("endpoint %q must have the form <node>.<port>", s)
	}
	return s[:i], s[i+1:], nil
}
