package operation

import "fmt"

// ExtentKind classifies how output pixels depend on input pixels.
type ExtentKind int

const (
	// Pointwise outputs depend only on the co-located input pixel.
	Pointwise ExtentKind = iota
	// Neighborhood outputs depend on a bounded square around the pixel.
	Neighborhood
	// Global outputs may depend on every input pixel; the image cannot be tiled.
	Global
)

// SpatialExtent is an operation's declared dependence on neighboring pixels.
type SpatialExtent struct {
	Kind   ExtentKind
	Radius int
}

func PointwiseExtent() SpatialExtent { return SpatialExtent{Kind: Pointwise} }

func NeighborhoodExtent(radius int) SpatialExtent {
	return SpatialExtent{Kind: Neighborhood, Radius: max(radius, 0)}
}

func GlobalExtent() SpatialExtent { return SpatialExtent{Kind: Global} }

// Chunkable reports whether the image may be split into tiles.
func (e SpatialExtent) Chunkable() bool { return e.Kind != Global }

// Overlap is the number of extra pixels each tile needs on every side.
func (e SpatialExtent) Overlap() int {
	if e.Kind == Neighborhood {
		return e.Radius
	}
	return 0
}

func (e SpatialExtent) String() string {
	switch e.Kind {
	case Pointwise:
		return "pointwise"
	case Neighborhood:
		return fmt.Sprintf("neighborhood(%d)", e.Radius)
	case Global:
		return "global"
	}
	return fmt.Sprintf("extent(%d)", int(e.Kind))
}
