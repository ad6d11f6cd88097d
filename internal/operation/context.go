package operation

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/specialistvlad/pixelgrid/internal/value"
)

var (
	ErrMissingInput     = errors.New("missing input")
	ErrMissingParameter = errors.New("missing parameter")
	ErrWrongType        = errors.New("wrong value type")
)

// ExecutionContext carries one invocation's inputs, parameters and outputs.
// It is used by a single goroutine.
type ExecutionContext struct {
	ctx     context.Context
	node    string
	inputs  map[string]value.Value
	params  map[string]value.Value
	outputs map[string]value.Value
}

// NewExecutionContext builds a context for node (a display name used in
// error messages). The maps are copied.
func NewExecutionContext(ctx context.Context, node string, inputs, params map[string]value.Value) *ExecutionContext {
	return &ExecutionContext{
		ctx:     ctx,
		node:    node,
		inputs:  maps.Clone(inputs),
		params:  maps.Clone(params),
		outputs: make(map[string]value.Value),
	}
}

// Context returns the run's context. Long computations may poll it.
func (ec *ExecutionContext) Context() context.Context { return ec.ctx }

func (ec *ExecutionContext) Node() string { return ec.node }

// Input returns a resolved input. Unset and None inputs report false.
func (ec *ExecutionContext) Input(name string) (value.Value, bool) {
	v, ok := ec.inputs[name]
	return v, ok && !v.IsNone()
}

// SetInput replaces an input. The tiled engine uses it to hand an operation
// one tile at a time.
func (ec *ExecutionContext) SetInput(name string, v value.Value) {
	ec.inputs[name] = v
}

func (ec *ExecutionContext) InputImage(name string) (*value.Image, error) {
	v, ok := ec.Input(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingInput, name)
	}
	img, ok := v.AsImage()
	if !ok {
		return nil, fmt.Errorf("%w: input '%s' is %s, not an image", ErrWrongType, name, v.Kind())
	}
	return img, nil
}

func (ec *ExecutionContext) InputInt(name string) (int64, error) {
	v, ok := ec.Input(name)
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrMissingInput, name)
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: input '%s' is %s, not an integer", ErrWrongType, name, v.Kind())
	}
	return n, nil
}

func (ec *ExecutionContext) InputFloat(name string) (float64, error) {
	v, ok := ec.Input(name)
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrMissingInput, name)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, fmt.Errorf("%w: input '%s' is %s, not a number", ErrWrongType, name, v.Kind())
	}
	return f, nil
}

// Param returns a parameter value, or None when absent.
func (ec *ExecutionContext) Param(name string) value.Value {
	return ec.params[name]
}

// Params returns all resolved parameters. The map must not be modified.
func (ec *ExecutionContext) Params() map[string]value.Value {
	return ec.params
}

func (ec *ExecutionContext) ParamInt(name string) (int64, error) {
	n, ok := ec.param(name).AsInt()
	if !ok {
		return 0, paramError(name, ec.params)
	}
	return n, nil
}

func (ec *ExecutionContext) ParamFloat(name string) (float64, error) {
	f, ok := ec.param(name).AsFloat()
	if !ok {
		return 0, paramError(name, ec.params)
	}
	return f, nil
}

func (ec *ExecutionContext) ParamString(name string) (string, error) {
	s, ok := ec.param(name).AsString()
	if !ok {
		return "", paramError(name, ec.params)
	}
	return s, nil
}

func (ec *ExecutionContext) ParamBool(name string) (bool, error) {
	b, ok := ec.param(name).AsBool()
	if !ok {
		return false, paramError(name, ec.params)
	}
	return b, nil
}

func (ec *ExecutionContext) ParamColor(name string) (value.Color, error) {
	c, ok := ec.param(name).AsColor()
	if !ok {
		return value.Color{}, paramError(name, ec.params)
	}
	return c, nil
}

func (ec *ExecutionContext) param(name string) value.Value {
	return ec.params[name]
}

func paramError(name string, params map[string]value.Value) error {
	v, ok := params[name]
	if !ok || v.IsNone() {
		return fmt.Errorf("%w: '%s'", ErrMissingParameter, name)
	}
	return fmt.Errorf("%w: parameter '%s' is %s", ErrWrongType, name, v.Kind())
}

// SetOutput records an output value.
func (ec *ExecutionContext) SetOutput(name string, v value.Value) {
	ec.outputs[name] = v
}

// Outputs returns everything set with SetOutput.
func (ec *ExecutionContext) Outputs() map[string]value.Value {
	return ec.outputs
}

// ValidationContext describes a node's configuration without any input data.
type ValidationContext struct {
	Node string
	// Params holds the resolved parameters, defaults included.
	Params map[string]value.Value
	// Connected maps each connected input port to the type of its source port.
	Connected map[string]value.PortType
}

// IsConnected reports whether the named input has an incoming connection.
func (vc *ValidationContext) IsConnected(port string) bool {
	_, ok := vc.Connected[port]
	return ok
}
