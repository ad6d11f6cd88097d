package hcl_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/fsutil"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/registry"
)

// ErrNoFiles is returned when none of the given paths holds an .hcl file.
var ErrNoFiles = errors.New("no HCL graph files found")

// File is the result of loading one or more HCL graph files.
type File struct {
	Graph *graph.Graph
	// Settings holds the attributes of the settings block, if any.
	Settings Overrides
	// Nodes maps each node block label to the id it was given.
	Nodes map[string]graph.NodeID
}

// Loader reads graphs written in HCL.
type Loader struct {
	registry *registry.Registry
}

// NewLoader creates a loader resolving operations against reg, which must be
// frozen.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{registry: reg}
}

type parsed struct {
	path string
	root fileRoot
}

// Load parses every .hcl file under paths (files or directories) and merges
// them into one graph. Connections may refer to nodes declared in any of the
// files; at most one settings block is allowed overall.
func (l *Loader) Load(ctx context.Context, paths ...string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var all []parsed
	for _, path := range files {
		f, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		p, err := decode(f.Body, path)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	return l.build(ctx, all)
}

// Parse reads a single graph from src. filename is used in diagnostics.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	p, err := decode(f.Body, filename)
	if err != nil {
		return nil, err
	}
	return l.build(ctx, []parsed{p})
}

func decode(body hcl.Body, path string) (parsed, error) {
	p := parsed{path: path}
	if diags := gohcl.DecodeBody(body, nil, &p.root); diags.HasErrors() {
		return parsed{}, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return p, nil
}

// build goes through the graph's mutation API so every structural rule is
// enforced exactly as for programmatic construction.
func (l *Loader) build(ctx context.Context, files []parsed) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	out := &File{
		Graph: graph.New(l.registry),
		Nodes: make(map[string]graph.NodeID),
	}

	var settingsFrom string
	for _, f := range files {
		for k, v := range f.root.Metadata {
			out.Graph.SetMetadata(k, v)
		}
		for _, s := range f.root.Settings {
			if settingsFrom != "" {
				return nil, fmt.Errorf("%s: duplicate settings block, already declared in %s", f.path, settingsFrom)
			}
			settingsFrom = f.path
			o, err := translateSettings(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
			out.Settings = o
		}
		for _, n := range f.root.Nodes {
			if err := l.addNode(ctx, out, n); err != nil {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
		}
	}

	var connections int
	for _, f := range files {
		for i, c := range f.root.Connections {
			if err := connect(out, c); err != nil {
				return nil, fmt.Errorf("%s: connection %d: %w", f.path, i, err)
			}
			connections++
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "nodes", len(out.Nodes), "connections", connections)
	return out, nil
}

func (l *Loader) addNode(ctx context.Context, out *File, n *NodeBlock) error {
	if _, dup := out.Nodes[n.Label]; dup {
		return fmt.Errorf("node %q declared twice", n.Label)
	}
	meta, ok := l.registry.Metadata(n.Operation)
	if !ok {
		return fmt.Errorf("node %q: %w: '%s'", n.Label, graph.ErrOperationNotFound, n.Operation)
	}
	params, err := decodeParameters(ctx, n.Parameters, meta)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.Label, err)
	}

	id, err := out.Graph.AddNode(n.Operation)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.Label, err)
	}
	out.Nodes[n.Label] = id
	if err := out.Graph.SetLabel(id, n.Label); err != nil {
		return err
	}
	if n.Disabled != nil && *n.Disabled {
		if err := out.Graph.SetDisabled(id, true); err != nil {
			return err
		}
	}
	for name, v := range params {
		if err := out.Graph.SetParameter(id, name, v); err != nil {
			return fmt.Errorf("node %q: %w", n.Label, err)
		}
	}
	return nil
}

func connect(out *File, c *ConnectionBlock) error {
	resolve := func(endpoint string) (graph.NodeID, string, error) {
		label, port, err := splitEndpoint(endpoint)
		if err != nil {
			return graph.NodeID{}, "", err
		}
		id, ok := out.Nodes[label]
		if !ok {
			return graph.NodeID{}, "", fmt.Errorf("%w: no node labeled %q", graph.ErrNodeNotFound, label)
		}
		return id, port, nil
	}
	src, srcPort, err := resolve(c.From)
	if err != nil {
		return err
	}
	dst, dstPort, err := resolve(c.To)
	if err != nil {
		return err
	}
	_, err = out.Graph.Connect(src, srcPort, dst, dstPort)
	return err
}
