package operation

import (
	"fmt"

	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Operation is the capability every processing step provides. The engine only
// ever talks to operations through this interface.
type Operation interface {
	// Metadata describes ports, parameters and spatial behavior. The returned
	// value must not change over the lifetime of the operation.
	Metadata() *Metadata
	// Validate checks a node configuration before anything is executed.
	Validate(vc *ValidationContext) error
	// Execute reads inputs and parameters from ec and sets its outputs.
	Execute(ec *ExecutionContext) error
}

// Factory produces a fresh operation instance.
type Factory func() Operation

// ExtentResolver is implemented by operations whose spatial extent depends on
// their parameters, such as a blur whose radius is configurable.
type ExtentResolver interface {
	Extent(params map[string]value.Value) SpatialExtent
}

// ExtentOf returns the extent op declares for the given parameters.
func ExtentOf(op Operation, params map[string]value.Value) SpatialExtent {
	if r, ok := op.(ExtentResolver); ok {
		return r.Extent(params)
	}
	return op.Metadata().Extent
}

// Category groups operations for listing and search.
type Category int

const (
	CategoryInput Category = iota
	CategoryOutput
	CategoryTransform
	CategoryAdjust
	CategoryBlur
	CategorySharpen
	CategoryEdge
	CategoryNoise
	CategoryDraw
	CategoryText
	CategoryComposite
	CategoryColor
	CategoryAnalyze
	CategoryMath
	CategoryUtility
	CategoryCustom
)

var categoryNames = [...]string{
	"Input", "Output", "Transform", "Adjust", "Blur", "Sharpen", "Edge", "Noise",
	"Draw", "Text", "Composite", "Color", "Analyze", "Math", "Utility", "Custom",
}

func (c Category) String() string {
	if int(c) >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Metadata is the static description of an operation.
type Metadata struct {
	ID          string
	Name        string
	Category    Category
	Description string
	Version     string
	Author      string
	Tags        []string

	Inputs     []schema.PortDefinition
	Outputs    []schema.PortDefinition
	Parameters []schema.ParameterDefinition

	// Deterministic operations always produce the same outputs for the same
	// inputs and parameters. Only their results are cached.
	Deterministic bool
	Extent        SpatialExtent
}

// Input looks up an input port by name.
func (m *Metadata) Input(name string) (schema.PortDefinition, bool) {
	for _, p := range m.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return schema.PortDefinition{}, false
}

// Output looks up an output port by name.
func (m *Metadata) Output(name string) (schema.PortDefinition, bool) {
	for _, p := range m.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return schema.PortDefinition{}, false
}

// Parameter looks up a parameter by name.
func (m *Metadata) Parameter(name string) (schema.ParameterDefinition, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return schema.ParameterDefinition{}, false
}

// ImagePorts returns the single image input and the first image output of
// operations that map one image to another. Only such operations can be
// tiled.
func (m *Metadata) ImagePorts() (in, out string, ok bool) {
	for _, p := range m.Inputs {
		if p.Type.IsAny() || p.Type.Kind() != value.KindImage {
			continue
		}
		if in != "" {
			return "", "", false
		}
		in = p.Name
	}
	for _, p := range m.Outputs {
		if !p.Type.IsAny() && p.Type.Kind() == value.KindImage {
			out = p.Name
			break
		}
	}
	return in, out, in != "" && out != ""
}

// Func adapts plain functions to the Operation interface.
type Func struct {
	Meta  Metadata
	Run   func(ec *ExecutionContext) error
	Check func(vc *ValidationContext) error
}

func (f *Func) Metadata() *Metadata { return &f.Meta }

func (f *Func) Validate(vc *ValidationContext) error {
	if f.Check == nil {
		return nil
	}
	return f.Check(vc)
}

func (f *Func) Execute(ec *ExecutionContext) error {
	return f.Run(ec)
}
