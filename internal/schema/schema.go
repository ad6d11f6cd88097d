package schema

import (
	"fmt"

	"github.com/specialistvlad/pixelgrid/internal/value"
)

// --- Ports ---

// PortDefinition declares a single named input or output slot of an operation.
type PortDefinition struct {
	Name        string
	Type        value.PortType
	Description string
	// Required inputs must be connected unless Default is set.
	Required bool
	Default  *value.Value
}

// Input declares a required input port.
func Input(name string, t value.PortType) PortDefinition {
	return PortDefinition{Name: name, Type: t, Required: true}
}

// OptionalInput declares an input port that may stay unconnected. A None
// default still lets the operation tell "unset" apart from a real value.
func OptionalInput(name string, t value.PortType, def value.Value) PortDefinition {
	return PortDefinition{Name: name, Type: t, Default: &def}
}

// Output declares an output port.
func Output(name string, t value.PortType) PortDefinition {
	return PortDefinition{Name: name, Type: t}
}

// HasUsableDefault reports whether an unconnected input can still be fed.
func (p PortDefinition) HasUsableDefault() bool {
	return p.Default != nil && !p.Default.IsNone()
}

// --- Parameters ---

// PathUsage marks parameters that name filesystem locations.
type PathUsage int

const (
	PathNone PathUsage = iota
	// PathRead names an existing file that the operation reads. Glob
	// patterns are accepted.
	PathRead
	// PathWrite names a file that the operation creates or overwrites.
	PathWrite
)

// ParameterDefinition declares a tunable setting of an operation.
type ParameterDefinition struct {
	Name        string
	Type        value.PortType
	Description string
	Default     value.Value
	Constraint  Constraint
	Path        PathUsage
}

// Param declares a parameter with a default value.
func Param(name string, t value.PortType, def value.Value) ParameterDefinition {
	return ParameterDefinition{Name: name, Type: t, Default: def}
}

// WithConstraint returns a copy of p constrained by c.
func (p ParameterDefinition) WithConstraint(c Constraint) ParameterDefinition {
	p.Constraint = c
	return p
}

// WithPath returns a copy of p marked as a filesystem path.
func (p ParameterDefinition) WithPath(usage PathUsage) ParameterDefinition {
	p.Path = usage
	return p
}

// WithDescription returns a copy of p with a description.
func (p ParameterDefinition) WithDescription(desc string) ParameterDefinition {
	p.Description = desc
	return p
}

// Check verifies that v has the parameter's type and satisfies its constraint.
func (p ParameterDefinition) Check(v value.Value) error {
	if !value.Conforms(v, p.Type) {
		return &Violation{
			Param:   p.Name,
			Message: fmt.Sprintf("expected %s, got %s", p.Type, value.TypeOf(v)),
			Fix:     fmt.Sprintf("provide a %s value", p.Type),
		}
	}
	if p.Constraint == nil {
		return nil
	}
	if err := p.Constraint.Check(v); err != nil {
		return &Violation{Param: p.Name, Message: err.Error(), Fix: p.Constraint.Suggestion()}
	}
	return nil
}

// Violation describes a parameter value that does not satisfy its definition.
type Violation struct {
	Param   string
	Message string
	Fix     string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("parameter '%s': %s", v.Param, v.Message)
}
