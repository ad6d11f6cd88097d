package validation

import (
	"context"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/graph"
)

// Stage inspects a graph and appends its findings to r.
type Stage interface {
	Name() string
	Check(ctx context.Context, g *graph.Graph, r *Report)
}

// Pipeline runs its stages in order.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from custom stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Full runs every builtin stage.
func Full() *Pipeline {
	return New(Structural{}, Types{}, Constraints{}, Custom{}, Resources{})
}

// Minimal runs the structural and type stages only.
func Minimal() *Pipeline {
	return New(Structural{}, Types{})
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Validate runs every stage and returns the aggregated report.
func (p *Pipeline) Validate(ctx context.Context, g *graph.Graph) *Report {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	report := newReport()

	for _, stage := range p.stages {
		errs, warns := len(report.Errors), len(report.Warnings)
		stage.Check(ctx, g, report)
		logger.Debug("Validation stage finished.",
			"stage", stage.Name(),
			"errors", len(report.Errors)-errs,
			"warnings", len(report.Warnings)-warns,
		)
	}

	report.Duration = time.Since(start)
	logger.Debug("Validation finished.", "valid", report.Valid, "duration", report.Duration)
	return report
}
