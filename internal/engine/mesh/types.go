// Package mesh builds the immutable triangle meshes displayed by scene objects.
package mesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Segment count limits for ring tessellation.
const (
	MinSegments = 4
	MaxSegments = 256
)

// ErrInvalidRing is returned when ring dimensions cannot produce a solid.
var ErrInvalidRing = errors.New("invalid ring parameters")

// Vertex is a mesh vertex in local object space.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// Face is a triangle of vertex indices, counter-clockwise seen from outside.
type Face [3]uint32

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents along each axis.
func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Mesh holds vertices and faces ready for rendering or collision building.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face

	// Groups lists vertex indices forming convex pieces of the solid.
	// Ring meshes emit one 8-vertex group per angular segment.
	Groups [][]uint32

	Bounds Bounds
	Sphere Sphere
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Positions returns the vertex positions in order.
func (m *Mesh) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Position
	}
	return out
}

// Strategy selects how a ring solid is constructed.
type Strategy int

const (
	// StrategySegments builds explicit trapezoid prism slices, 8 vertices each.
	StrategySegments Strategy = iota
	// StrategyExtrude extrudes an annular profile with shared vertices.
	StrategyExtrude
)

// String returns the strategy name used in config files.
func (s Strategy) String() string {
	switch s {
	case StrategyExtrude:
		return "extrude"
	default:
		return "segments"
	}
}

// ParseStrategy maps a config name to a Strategy. Unknown names select segments.
func ParseStrategy(name string) Strategy {
	if name == "extrude" {
		return StrategyExtrude
	}
	return StrategySegments
}

// RingParams describes an annular cylinder ("cave cylinder").
type RingParams struct {
	OuterRadius float64
	InnerRadius float64
	Height      float64
	Segments    int
	Strategy    Strategy
}

// ClampSegments limits a segment count to [MinSegments, MaxSegments].
func ClampSegments(n int) int {
	if n < MinSegments {
		return MinSegments
	}
	if n > MaxSegments {
		return MaxSegments
	}
	return n
}
