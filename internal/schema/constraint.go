package schema

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Constraint restricts the values a parameter accepts beyond its type.
type Constraint interface {
	// Check returns a descriptive error when v is rejected.
	Check(v value.Value) error
	// Suggestion tells the user how to fix a rejected value.
	Suggestion() string
}

type rangeConstraint struct {
	min, max float64
	hasMin   bool
	hasMax   bool
}

// Range accepts numbers in [min, max].
func Range(min, max float64) Constraint {
	return rangeConstraint{min: min, max: max, hasMin: true, hasMax: true}
}

// MinValue accepts numbers >= min.
func MinValue(min float64) Constraint { return rangeConstraint{min: min, hasMin: true} }

// MaxValue accepts numbers <= max.
func MaxValue(max float64) Constraint { return rangeConstraint{max: max, hasMax: true} }

func (c rangeConstraint) Check(v value.Value) error {
	f, ok := v.AsFloat()
	if !ok {
		return fmt.Errorf("%s is not a number", v)
	}
	if c.hasMin && f < c.min {
		return fmt.Errorf("%s is below the minimum %g", v, c.min)
	}
	if c.hasMax && f > c.max {
		return fmt.Errorf("%s is above the maximum %g", v, c.max)
	}
	return nil
}

func (c rangeConstraint) Suggestion() string {
	switch {
	case c.hasMin && c.hasMax:
		return fmt.Sprintf("use a value between %g and %g", c.min, c.max)
	case c.hasMin:
		return fmt.Sprintf("use a value of at least %g", c.min)
	default:
		return fmt.Sprintf("use a value of at most %g", c.max)
	}
}

type stepConstraint float64

// Step accepts numbers that are whole multiples of step.
func Step(step float64) Constraint { return stepConstraint(step) }

func (c stepConstraint) Check(v value.Value) error {
	f, ok := v.AsFloat()
	if !ok {
		return fmt.Errorf("%s is not a number", v)
	}
	q := f / float64(c)
	if math.Abs(q-math.Round(q)) > 1e-9 {
		return fmt.Errorf("%s is not a multiple of %g", v, float64(c))
	}
	return nil
}

func (c stepConstraint) Suggestion() string {
	return fmt.Sprintf("use a multiple of %g", float64(c))
}

type lengthConstraint struct {
	n     int
	isMin bool
}

// MinLength bounds the length of strings, arrays and maps from below.
func MinLength(n int) Constraint { return lengthConstraint{n: n, isMin: true} }

// MaxLength bounds the length of strings, arrays and maps from above.
func MaxLength(n int) Constraint { return lengthConstraint{n: n} }

// NotEmpty rejects empty strings, arrays and maps.
func NotEmpty() Constraint { return lengthConstraint{n: 1, isMin: true} }

func (c lengthConstraint) Check(v value.Value) error {
	l := v.Len()
	if c.isMin && l < c.n {
		if c.n == 1 {
			return fmt.Errorf("value must not be empty")
		}
		return fmt.Errorf("length %d is shorter than %d", l, c.n)
	}
	if !c.isMin && l > c.n {
		return fmt.Errorf("length %d is longer than %d", l, c.n)
	}
	return nil
}

func (c lengthConstraint) Suggestion() string {
	if c.isMin {
		return fmt.Sprintf("provide at least %d element(s)", c.n)
	}
	return fmt.Sprintf("provide at most %d element(s)", c.n)
}

type patternConstraint struct {
	re *regexp.Regexp
}

// Pattern accepts strings matching expr. It panics on an invalid expression,
// like regexp.MustCompile, because patterns are fixed at registration time.
func Pattern(expr string) Constraint {
	return patternConstraint{re: regexp.MustCompile(expr)}
}

func (c patternConstraint) Check(v value.Value) error {
	s, ok := v.AsString()
	if !ok {
		return fmt.Errorf("%s is not a string", v)
	}
	if !c.re.MatchString(s) {
		return fmt.Errorf("%q does not match %s", s, c.re)
	}
	return nil
}

func (c patternConstraint) Suggestion() string {
	return fmt.Sprintf("use a value matching %s", c.re)
}

type oneOfConstraint []value.Value

// OneOf accepts only the listed values.
func OneOf(options ...value.Value) Constraint { return oneOfConstraint(options) }

func (c oneOfConstraint) Check(v value.Value) error {
	if slices.ContainsFunc(c, v.Equal) {
		return nil
	}
	return fmt.Errorf("%s is not one of the allowed values", v)
}

func (c oneOfConstraint) Suggestion() string {
	parts := make([]string, len(c))
	for i, opt := range c {
		parts[i] = opt.String()
	}
	return "use one of " + strings.Join(parts, ", ")
}

type imageSizeConstraint struct {
	width, height int
	isMin         bool
}

// ImageMinSize requires images of at least width x height.
func ImageMinSize(width, height int) Constraint {
	return imageSizeConstraint{width: width, height: height, isMin: true}
}

// ImageMaxSize requires images of at most width x height.
func ImageMaxSize(width, height int) Constraint {
	return imageSizeConstraint{width: width, height: height}
}

func (c imageSizeConstraint) Check(v value.Value) error {
	img, ok := v.AsImage()
	if !ok {
		return fmt.Errorf("%s is not an image", v)
	}
	if c.isMin && (img.Width < c.width || img.Height < c.height) {
		return fmt.Errorf("image %dx%d is smaller than %dx%d", img.Width, img.Height, c.width, c.height)
	}
	if !c.isMin && (img.Width > c.width || img.Height > c.height) {
		return fmt.Errorf("image %dx%d is larger than %dx%d", img.Width, img.Height, c.width, c.height)
	}
	return nil
}

func (c imageSizeConstraint) Suggestion() string {
	if c.isMin {
		return fmt.Sprintf("use an image of at least %dx%d", c.width, c.height)
	}
	return fmt.Sprintf("use an image of at most %dx%d", c.width, c.height)
}

// Positive accepts numbers > 0.
func Positive() Constraint { return signConstraint{strict: true} }

// NonNegative accepts numbers >= 0.
func NonNegative() Constraint { return signConstraint{} }

type signConstraint struct{ strict bool }

func (c signConstraint) Check(v value.Value) error {
	f, ok := v.AsFloat()
	if !ok {
		return fmt.Errorf("%s is not a number", v)
	}
	if c.strict && f <= 0 {
		return fmt.Errorf("%s must be positive", v)
	}
	if f < 0 {
		return fmt.Errorf("%s must not be negative", v)
	}
	return nil
}

func (c signConstraint) Suggestion() string {
	if c.strict {
		return "use a value greater than zero"
	}
	return "use zero or a positive value"
}

type customConstraint struct {
	desc string
	fn   func(value.Value) error
}

// Custom wraps an arbitrary predicate. desc is shown as the suggested fix.
func Custom(desc string, fn func(value.Value) error) Constraint {
	return customConstraint{desc: desc, fn: fn}
}

func (c customConstraint) Check(v value.Value) error { return c.fn(v) }
func (c customConstraint) Suggestion() string        { return c.desc }

// All combines constraints; the first failure wins.
func All(cs ...Constraint) Constraint { return allConstraint(cs) }

type allConstraint []Constraint

func (a allConstraint) Check(v value.Value) error {
	for _, c := range a {
		if err := c.Check(v); err != nil {
			return err
		}
	}
	return nil
}

func (a allConstraint) Suggestion() string {
	parts := make([]string, len(a))
	for i, c := range a {
		parts[i] = c.Suggestion()
	}
	return strings.Join(parts, "; ")
}
