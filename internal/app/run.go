package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/engine"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/validation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

var (
	// ErrInvalidGraph is returned when validation finds errors.
	ErrInvalidGraph = errors.New("graph is invalid")
	// ErrExecutionFailed is returned when at least one node failed.
	ErrExecutionFailed = errors.New("execution failed")
	// ErrUnknownOperation is returned by info for an unregistered id.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", string(a.config.Command))
	defer a.logger.Debug("App.Run method finished.")

	switch a.config.Command {
	case CommandList:
		return a.list()
	case CommandInfo:
		return a.info(a.config.OperationID)
	case CommandValidate:
		g, _, err := a.loadGraph(ctx)
		if err != nil {
			return err
		}
		_, err = a.validate(ctx, g)
		return err
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	g, fileSettings, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}
	if _, err := a.validate(ctx, g); err != nil {
		return err
	}
	return a.execute(ctx, g, a.config.Settings.Apply(fileSettings.Apply(engine.DefaultSettings())))
}

func (a *App) pipeline() *validation.Pipeline {
	if a.config.Validation == ValidationMinimal {
		return validation.Minimal()
	}
	return validation.Full()
}

// validate prints the report and fails on errors. Warnings never fail.
func (a *App) validate(ctx context.Context, g *graph.Graph) (*validation.Report, error) {
	report := a.pipeline().Validate(ctx, g)
	fmt.Fprintln(a.outW, report.Summary())
	if !report.Valid {
		return report, fmt.Errorf("%w: %d error(s)", ErrInvalidGraph, len(report.Errors))
	}
	return report, nil
}

func (a *App) execute(ctx context.Context, g *graph.Graph, settings engine.Settings) error {
	if g.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}
	a.logger.Debug("Executor starting run.",
		"memory_limit", humanize.IBytes(uint64(settings.MemoryLimit)),
		"tile_size", settings.TileSize,
	)

	res, err := a.engine.Execute(ctx, g, settings, engine.SinkFunc(func(e engine.Event) {
		a.logEvent(ctx, g, e)
	}))
	if res != nil {
		a.printResult(g, res)
	}
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %d node(s) failed", ErrExecutionFailed, res.Stats.Failed)
	}
	return nil
}

func (a *App) logEvent(ctx context.Context, g *graph.Graph, e engine.Event) {
	logger := ctxlog.FromContext(ctx)
	name := func() string {
		if n, ok := g.Node(e.Node); ok {
			return n.DisplayName()
		}
		return e.Node.String()
	}
	switch e.Kind {
	case engine.EventNodeFailed:
		logger.Warn("Node failed.", "node", name(), "error", e.Err)
	case engine.EventNodeSkipped:
		logger.Debug("Node skipped.", "node", name(), "reason", e.Reason.String())
	case engine.EventNodeCompleted:
		logger.Debug("Node completed.", "node", name(), "duration", e.Duration)
	case engine.EventProgress:
		logger.Debug("Progress.", "done", e.Done, "total", e.Total,
			"percent", fmt.Sprintf("%.0f%%", e.Fraction()*100),
			"elapsed", e.Elapsed.Round(time.Millisecond), "remaining", e.Remaining.Round(time.Millisecond))
	}
}

// printResult writes terminal outputs in node order, then the run summary.
func (a *App) printResult(g *graph.Graph, res *engine.Result) {
	for _, id := range g.NodeIDs() {
		outputs, ok := res.Terminal[id]
		if !ok {
			continue
		}
		n, _ := g.Node(id)
		for _, port := range slices.Sorted(maps.Keys(outputs)) {
			fmt.Fprintf(a.outW, "%s.%s = %s\n", n.DisplayName(), port, formatValue(outputs[port]))
		}
	}
	for _, id := range g.NodeIDs() {
		if err, ok := res.Errors[id]; ok {
			fmt.Fprintf(a.outW, "❌ %v\n", err)
		}
	}
	s := res.Stats
	fmt.Fprintf(a.outW, "executed %d, cached %d, skipped %d, failed %d, tiled %d in %s\n",
		s.Executed, s.Cached, s.Skipped, s.Failed, s.Chunked, res.Elapsed.Round(time.Millisecond))
}

func formatValue(v value.Value) string {
	if img, ok := v.AsImage(); ok {
		return fmt.Sprintf("%s [%s]", img, humanize.IBytes(uint64(img.SizeBytes())))
	}
	return v.String()
}

// list prints every operation grouped by category.
func (a *App) list() error {
	for _, cat := range a.registry.Categories() {
		fmt.Fprintf(a.outW, "%s:\n", cat)
		for _, meta := range a.registry.ByCategory(cat) {
			fmt.Fprintf(a.outW, "  %-16s %s\n", meta.ID, meta.Description)
		}
	}
	return nil
}

// info prints one operation's ports and parameters.
func (a *App) info(id string) error {
	meta, ok := a.registry.Metadata(id)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownOperation, id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) v%s\n", meta.Name, meta.ID, meta.Version)
	fmt.Fprintf(&b, "  %s\n", meta.Description)
	fmt.Fprintf(&b, "  category: %s, extent: %s, deterministic: %t\n", meta.Category, meta.Extent, meta.Deterministic)
	if len(meta.Tags) > 0 {
		fmt.Fprintf(&b, "  tags: %s\n", strings.Join(meta.Tags, ", "))
	}
	if len(meta.Inputs) > 0 {
		b.WriteString("inputs:\n")
		for _, p := range meta.Inputs {
			req := "optional"
			if p.Required && p.Default == nil {
				req = "required"
			}
			fmt.Fprintf(&b, "  %-12s %-16s %s\n", p.Name, p.Type, req)
		}
	}
	if len(meta.Outputs) > 0 {
		b.WriteString("outputs:\n")
		for _, p := range meta.Outputs {
			fmt.Fprintf(&b, "  %-12s %s\n", p.Name, p.Type)
		}
	}
	if len(meta.Parameters) > 0 {
		b.WriteString("parameters:\n")
		for _, p := range meta.Parameters {
			fmt.Fprintf(&b, "  %-12s %-16s default %s\n", p.Name, p.Type, p.Default)
		}
	}
	_, err := fmt.Fprint(a.outW, b.String())
	return err
}
