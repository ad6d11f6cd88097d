package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/topology"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Structural checks required inputs, acyclicity and connectivity.
type Structural struct{}

func (Structural) Name() string { return "structural" }

func (Structural) Check(_ context.Context, g *graph.Graph, r *Report) {
	if g.Len() == 0 {
		r.AddWarning(Warning{Kind: KindEmptyGraph, Message: "graph has no nodes"})
		return
	}

	for _, n := range g.Nodes() {
		meta, err := g.OperationOf(n.ID)
		if err != nil {
			r.AddError(Error{Kind: KindUnknownOperation, Node: n.ID, Message: err.Error()})
			continue
		}
		if n.Disabled {
			if len(g.Outgoing(n.ID)) > 0 {
				r.AddWarning(Warning{
					Kind:       KindDisabledDownstream,
					Node:       n.ID,
					Message:    fmt.Sprintf("disabled node '%s' feeds other nodes, which will be skipped", n.DisplayName()),
					Suggestion: "enable the node or disconnect its outputs",
				})
			}
			continue
		}
		for _, in := range meta.Inputs {
			if !in.Required || in.HasUsableDefault() {
				continue
			}
			if _, ok := g.InputConnection(n.ID, in.Name); ok {
				continue
			}
			r.AddError(Error{
				Kind:       KindMissingInput,
				Node:       n.ID,
				Port:       in.Name,
				Message:    fmt.Sprintf("required input '%s' of '%s' is not connected", in.Name, n.DisplayName()),
				Suggestion: fmt.Sprintf("connect a %s output to '%s'", in.Type, in.Name),
			})
		}
	}

	if topology.HasCycle(g) {
		r.AddError(Error{Kind: KindCycle, Message: "graph contains a cycle"})
	}

	if parts := topology.ConnectedSubgraphs(g); len(parts) > 1 {
		r.AddWarning(Warning{
			Kind:       KindIsland,
			Message:    fmt.Sprintf("graph has %d disconnected subgraphs", len(parts)),
			Suggestion: "remove unused nodes or connect them",
		})
	}
}

// Types re-checks every connection with the same relation Connect uses.
type Types struct{}

func (Types) Name() string { return "type" }

func (Types) Check(_ context.Context, g *graph.Graph, r *Report) {
	for _, c := range g.Connections() {
		srcMeta, err := g.OperationOf(c.From.Node)
		if err != nil {
			continue
		}
		dstMeta, err := g.OperationOf(c.To.Node)
		if err != nil {
			continue
		}
		out, okOut := srcMeta.Output(c.From.Port)
		in, okIn := dstMeta.Input(c.To.Port)
		if !okOut || !okIn {
			r.AddError(Error{Kind: KindTypeMismatch, Node: c.To.Node, Connection: c.ID, Port: c.To.Port, Message: "connection references a missing port"})
			continue
		}
		if !value.Assignable(out.Type, in.Type) {
			r.AddError(Error{
				Kind:       KindTypeMismatch,
				Node:       c.To.Node,
				Connection: c.ID,
				Port:       c.To.Port,
				Message:    fmt.Sprintf("cannot deliver %s to input of type %s", out.Type, in.Type),
				Suggestion: "insert a conversion node",
			})
		}
	}
}

// Constraints checks every resolved parameter against its definition.
type Constraints struct{}

func (Constraints) Name() string { return "constraint" }

func (Constraints) Check(_ context.Context, g *graph.Graph, r *Report) {
	for _, id := range g.NodeIDs() {
		meta, err := g.OperationOf(id)
		if err != nil {
			continue
		}
		params, err := g.ResolvedParameters(id)
		if err != nil {
			continue
		}
		for _, def := range meta.Parameters {
			err := def.Check(params[def.Name])
			if err == nil {
				continue
			}
			e := Error{Kind: KindConstraint, Node: id, Param: def.Name, Message: err.Error()}
			var v *schema.Violation
			if errors.As(err, &v) {
				e.Message = v.Message
				e.Suggestion = v.Fix
			}
			r.AddError(e)
		}
	}
}

// Custom delegates to each operation's own Validate.
type Custom struct{}

func (Custom) Name() string { return "custom" }

func (Custom) Check(_ context.Context, g *graph.Graph, r *Report) {
	for _, n := range g.Nodes() {
		if n.Disabled {
			continue
		}
		op, err := g.Registry().Create(n.OperationID)
		if err != nil {
			continue
		}
		params, err := g.ResolvedParameters(n.ID)
		if err != nil {
			continue
		}
		vc := &operation.ValidationContext{
			Node:      n.DisplayName(),
			Params:    params,
			Connected: connectedTypes(g, n.ID),
		}
		if err := op.Validate(vc); err != nil {
			r.AddError(Error{Kind: KindCustom, Node: n.ID, Message: err.Error()})
		}
	}
}

func connectedTypes(g *graph.Graph, node graph.NodeID) map[string]value.PortType {
	out := make(map[string]value.PortType)
	for _, c := range g.Incoming(node) {
		meta, err := g.OperationOf(c.From.Node)
		if err != nil {
			continue
		}
		if p, ok := meta.Output(c.From.Port); ok {
			out[c.To.Port] = p.Type
		}
	}
	return out
}

// Resources checks filesystem-path parameters without touching the files.
type Resources struct{}

func (Resources) Name() string { return "resource" }

func (Resources) Check(_ context.Context, g *graph.Graph, r *Report) {
	for _, n := range g.Nodes() {
		if n.Disabled {
			continue
		}
		meta, err := g.OperationOf(n.ID)
		if err != nil {
			continue
		}
		params, err := g.ResolvedParameters(n.ID)
		if err != nil {
			continue
		}
		for _, def := range meta.Parameters {
			if def.Path == schema.PathNone {
				continue
			}
			path, _ := params[def.Name].AsString()
			checkPath(r, n, def, path)
		}
	}
}

func checkPath(r *Report, n *graph.Node, def schema.ParameterDefinition, path string) {
	if strings.TrimSpace(path) == "" {
		r.AddError(Error{
			Kind:       KindResource,
			Node:       n.ID,
			Param:      def.Name,
			Message:    fmt.Sprintf("'%s' needs a file path", n.DisplayName()),
			Suggestion: fmt.Sprintf("set parameter '%s'", def.Name),
		})
		return
	}

	switch def.Path {
	case schema.PathRead:
		if strings.ContainsAny(path, "*?[") {
			matches, err := filepath.Glob(path)
			if err != nil || len(matches) == 0 {
				r.AddError(Error{Kind: KindResource, Node: n.ID, Param: def.Name, Message: fmt.Sprintf("pattern '%s' matches no files", path)})
			}
			return
		}
		info, err := os.Stat(path)
		switch {
		case err != nil:
			r.AddError(Error{Kind: KindResource, Node: n.ID, Param: def.Name, Message: fmt.Sprintf("file '%s' does not exist", path), Suggestion: "check the path"})
		case info.IsDir():
			r.AddError(Error{Kind: KindResource, Node: n.ID, Param: def.Name, Message: fmt.Sprintf("'%s' is a directory", path)})
		}
	case schema.PathWrite:
		dir := filepath.Dir(path)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			r.AddWarning(Warning{
				Kind:       KindResource,
				Node:       n.ID,
				Message:    fmt.Sprintf("output directory '%s' does not exist", dir),
				Suggestion: "create the directory before running",
			})
			return
		}
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				r.AddError(Error{Kind: KindResource, Node: n.ID, Param: def.Name, Message: fmt.Sprintf("'%s' is a directory", path)})
				return
			}
			if err := writable(path); err != nil {
				r.AddError(Error{
					Kind:       KindResource,
					Node:       n.ID,
					Param:      def.Name,
					Message:    fmt.Sprintf("file '%s' is not writable: %v", path, err),
					Suggestion: "check the file permissions",
				})
			}
			return
		}
		if err := writable(dir); err != nil {
			r.AddError(Error{
				Kind:       KindResource,
				Node:       n.ID,
				Param:      def.Name,
				Message:    fmt.Sprintf("output directory '%s' is not writable: %v", dir, err),
				Suggestion: "check the directory permissions or choose another path",
			})
		}
	}
}
