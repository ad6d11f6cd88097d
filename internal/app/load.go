package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/hcl_adapter"
)

// loadGraph reads the configured graph. HCL files and directories may carry
// settings; JSON and YAML documents never do.
func (a *App) loadGraph(ctx context.Context) (*graph.Graph, hcl_adapter.Overrides, error) {
	logger := ctxlog.FromContext(ctx)
	path := a.config.GraphPath
	logger.Debug("Loading graph...", "path", path)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, hcl_adapter.Overrides{}, fmt.Errorf("failed to open graph: %w", err)
		}
		defer f.Close()

		var g *graph.Graph
		if ext == ".json" {
			g, err = graph.DecodeJSON(a.registry, f)
		} else {
			g, err = graph.DecodeYAML(a.registry, f)
		}
		if err != nil {
			return nil, hcl_adapter.Overrides{}, fmt.Errorf("failed to load graph %s: %w", path, err)
		}
		logger.Info("Graph loaded.", "nodes", g.Len(), "connections", g.ConnectionCount())
		return g, hcl_adapter.Overrides{}, nil
	}

	file, err := hcl_adapter.NewLoader(a.registry).Load(ctx, path)
	if err != nil {
		return nil, hcl_adapter.Overrides{}, fmt.Errorf("failed to load graph: %w", err)
	}
	logger.Info("Graph loaded.", "nodes", file.Graph.Len(), "connections", file.Graph.ConnectionCount())
	return file.Graph, file.Settings, nil
}
