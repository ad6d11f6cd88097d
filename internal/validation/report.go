package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/graph"
)

// IssueKind classifies errors and warnings.
type IssueKind string

const (
	KindMissingInput       IssueKind = "missing_input"
	KindCycle              IssueKind = "cycle"
	KindTypeMismatch       IssueKind = "type_mismatch"
	KindConstraint         IssueKind = "constraint"
	KindCustom             IssueKind = "custom"
	KindResource           IssueKind = "resource"
	KindUnknownOperation   IssueKind = "unknown_operation"
	KindEmptyGraph         IssueKind = "empty_graph"
	KindIsland             IssueKind = "island"
	KindDisabledDownstream IssueKind = "disabled_downstream"
)

// Error is a problem that makes the graph unfit for execution. Zero ids mean
// the error is not tied to a node or connection.
type Error struct {
	Kind       IssueKind
	Node       graph.NodeID
	Connection graph.ConnectionID
	Port       string
	Param      string
	Message    string
	Suggestion string
}

func (e Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if !e.Node.IsZero() {
		fmt.Fprintf(&b, " [node %s", e.Node)
		if e.Port != "" {
			fmt.Fprintf(&b, " port '%s'", e.Port)
		}
		if e.Param != "" {
			fmt.Fprintf(&b, " param '%s'", e.Param)
		}
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Warning is advisory and never affects validity.
type Warning struct {
	Kind       IssueKind
	Node       graph.NodeID
	Message    string
	Suggestion string
}

// Report accumulates the findings of every stage.
type Report struct {
	Valid    bool
	Errors   []Error
	Warnings []Warning
	Duration time.Duration
}

func newReport() *Report {
	return &Report{Valid: true}
}

// AddError appends an error and marks the report invalid.
func (r *Report) AddError(e Error) {
	r.Errors = append(r.Errors, e)
	r.Valid = false
}

// AddWarning appends a warning.
func (r *Report) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// ErrorsFor returns the errors attached to node.
func (r *Report) ErrorsFor(node graph.NodeID) []Error {
	var out []Error
	for _, e := range r.Errors {
		if e.Node == node {
			out = append(out, e)
		}
	}
	return out
}

// Summary renders the report for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	if r.Valid {
		fmt.Fprintf(&b, "✅ Graph is valid (%d warnings, %s)\n", len(r.Warnings), r.Duration.Round(time.Microsecond))
	} else {
		fmt.Fprintf(&b, "❌ Graph is invalid: %d errors, %d warnings (%s)\n", len(r.Errors), len(r.Warnings), r.Duration.Round(time.Microsecond))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e.Error())
		if e.Suggestion != "" {
			fmt.Fprintf(&b, "         fix: %s\n", e.Suggestion)
		}
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w.Message)
		if w.Suggestion != "" {
			fmt.Fprintf(&b, "           hint: %s\n", w.Suggestion)
		}
	}
	return b.String()
}
