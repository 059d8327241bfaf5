package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// slicePattern lists the 8 triangles of one ring slice. Indices refer to the
// slice corners: 0-3 bottom (outer start, outer end, inner end, inner start)
// and 4-7 the same corners on top.
var slicePattern = [8][3]uint32{
	{4, 6, 5}, {4, 7, 6}, // top
	{0, 1, 2}, {0, 2, 3}, // bottom
	{0, 4, 5}, {0, 5, 1}, // outer wall
	{3, 2, 6}, {3, 6, 7}, // inner wall
}

// BuildRing builds a closed annular cylinder around the Y axis, centered on
// the origin. Segment counts outside [MinSegments, MaxSegments] are clamped.
func BuildRing(p RingParams) (*Mesh, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Segments = ClampSegments(p.Segments)

	var m *Mesh
	switch p.Strategy {
	case StrategyExtrude:
		m = buildRingExtrude(p)
	default:
		m = buildRingSegments(p)
	}

	// Construction runs from y=0 up to the height.
	translate(m, mgl64.Vec3{0, -p.Height / 2, 0})
	computeNormals(m)
	computeBounds(m)
	return m, nil
}

func (p RingParams) validate() error {
	switch {
	case !positiveFinite(p.OuterRadius):
		return fmt.Errorf("%w: outer radius %g must be positive and finite", ErrInvalidRing, p.OuterRadius)
	case !positiveFinite(p.InnerRadius):
		return fmt.Errorf("%w: inner radius %g must be positive and finite", ErrInvalidRing, p.InnerRadius)
	case p.InnerRadius >= p.OuterRadius:
		return fmt.Errorf("%w: inner radius %g must be below outer radius %g", ErrInvalidRing, p.InnerRadius, p.OuterRadius)
	case !positiveFinite(p.Height):
		return fmt.Errorf("%w: height %g must be positive and finite", ErrInvalidRing, p.Height)
	}
	return nil
}

// positiveFinite rejects NaN as well, which fails every ordered comparison.
func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// chord returns the third side of a triangle with two sides of length r
// enclosing angle theta (law of cosines).
func chord(r, theta float64) float64 {
	return math.Sqrt(2*r*r - 2*r*r*math.Cos(theta))
}

// buildRingSegments emits one trapezoidal prism per segment with its own 8
// vertices, so every slice is a convex group.
func buildRingSegments(p RingParams) *Mesh {
	n := p.Segments
	step := 2 * math.Pi / float64(n)

	outerChord := chord(p.OuterRadius, step)
	innerChord := chord(p.InnerRadius, step)
	outerApothem := math.Sqrt(p.OuterRadius*p.OuterRadius - outerChord*outerChord/4)
	innerApothem := math.Sqrt(p.InnerRadius*p.InnerRadius - innerChord*innerChord/4)

	m := &Mesh{
		Vertices: make([]Vertex, 0, 8*n),
		Faces:    make([]Face, 0, 8*n),
		Groups:   make([][]uint32, 0, n),
	}

	for i := 0; i < n; i++ {
		mid := (float64(i) + 0.5) * step
		radial := mgl64.Vec3{math.Cos(mid), 0, math.Sin(mid)}
		tangent := mgl64.Vec3{-math.Sin(mid), 0, math.Cos(mid)}

		bottom := [4]mgl64.Vec3{
			radial.Mul(outerApothem).Sub(tangent.Mul(outerChord / 2)),
			radial.Mul(outerApothem).Add(tangent.Mul(outerChord / 2)),
			radial.Mul(innerApothem).Add(tangent.Mul(innerChord / 2)),
			radial.Mul(innerApothem).Sub(tangent.Mul(innerChord / 2)),
		}

		base := uint32(8 * i)
		group := make([]uint32, 8)
		for k := 0; k < 8; k++ {
			pos := bottom[k%4]
			if k >= 4 {
				pos = pos.Add(mgl64.Vec3{0, p.Height, 0})
			}
			m.Vertices = append(m.Vertices, Vertex{Position: pos})
			group[k] = base + uint32(k)
		}
		m.Groups = append(m.Groups, group)

		for _, tri := range slicePattern {
			m.Faces = append(m.Faces, Face{base + tri[0], base + tri[1], base + tri[2]})
		}
	}
	return m
}

// buildRingExtrude extrudes the annulus profile: outer and inner circles on
// the bottom and top share vertices between neighbouring segments.
func buildRingExtrude(p RingParams) *Mesh {
	n := p.Segments
	step := 2 * math.Pi / float64(n)

	m := &Mesh{
		Vertices: make([]Vertex, 4*n),
		Faces:    make([]Face, 0, 8*n),
		Groups:   make([][]uint32, 0, n),
	}

	// Rings of n vertices: outer bottom, inner bottom, outer top, inner top.
	for k := 0; k < n; k++ {
		a := float64(k) * step
		dir := mgl64.Vec3{math.Cos(a), 0, math.Sin(a)}
		up := mgl64.Vec3{0, p.Height, 0}
		m.Vertices[k].Position = dir.Mul(p.OuterRadius)
		m.Vertices[n+k].Position = dir.Mul(p.InnerRadius)
		m.Vertices[2*n+k].Position = dir.Mul(p.OuterRadius).Add(up)
		m.Vertices[3*n+k].Position = dir.Mul(p.InnerRadius).Add(up)
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		corners := [8]uint32{
			uint32(i), uint32(j), uint32(n + j), uint32(n + i),
			uint32(2*n + i), uint32(2*n + j), uint32(3*n + j), uint32(3*n + i),
		}
		m.Groups = append(m.Groups, corners[:])

		for _, tri := range slicePattern {
			m.Faces = append(m.Faces, Face{corners[tri[0]], corners[tri[1]], corners[tri[2]]})
		}
	}
	return m
}
