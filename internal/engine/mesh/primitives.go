package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BuildSphere builds a UV sphere centered on the origin.
func BuildSphere(radius float64, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	m := &Mesh{}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			n := mgl64.Vec3{
				-math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				math.Cos(v * math.Pi),
				math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			m.Vertices = append(m.Vertices, Vertex{Position: n.Mul(radius), Normal: n})
		}
	}

	row := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1
			b := uint32(iy)*row + uint32(ix)
			c := uint32(iy+1)*row + uint32(ix)
			d := uint32(iy+1)*row + uint32(ix) + 1
			// Pole rows collapse to a point; skip the degenerate half.
			if iy != 0 {
				m.Faces = append(m.Faces, Face{a, b, d})
			}
			if iy != heightSegments-1 {
				m.Faces = append(m.Faces, Face{b, c, d})
			}
		}
	}

	computeBounds(m)
	return m
}

// boxSides lists outward normal n and in-plane axes u, v with u x v = n.
var boxSides = [6][3]mgl64.Vec3{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
}

// BuildBox builds an axis-aligned box of the given full size centered on the
// origin, with flat-shaded sides.
func BuildBox(size mgl64.Vec3) *Mesh {
	half := size.Mul(0.5)
	m := &Mesh{
		Vertices: make([]Vertex, 0, 24),
		Faces:    make([]Face, 0, 12),
	}

	extent := func(axis mgl64.Vec3) float64 {
		return math.Abs(axis.Dot(half))
	}

	for _, side := range boxSides {
		n, u, v := side[0], side[1], side[2]
		center := n.Mul(extent(n))
		du := u.Mul(extent(u))
		dv := v.Mul(extent(v))

		base := uint32(len(m.Vertices))
		corners := [4]mgl64.Vec3{
			center.Sub(du).Sub(dv),
			center.Add(du).Sub(dv),
			center.Add(du).Add(dv),
			center.Sub(du).Add(dv),
		}
		for _, c := range corners {
			m.Vertices = append(m.Vertices, Vertex{Position: c, Normal: n})
		}
		m.Faces = append(m.Faces, Face{base, base + 1, base + 2}, Face{base, base + 2, base + 3})
	}

	computeBounds(m)
	return m
}
