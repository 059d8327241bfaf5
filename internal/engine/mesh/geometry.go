package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// faceNormal returns the unit normal of a triangle, or false when degenerate.
func faceNormal(a, b, c mgl64.Vec3) (mgl64.Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}, false
	}
	return n.Mul(1 / l), true
}

// computeNormals sets each vertex normal to the average of its adjacent face normals.
// Degenerate triangles are skipped.
func computeNormals(m *Mesh) {
	sums := make([]mgl64.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		n, ok := faceNormal(m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position)
		if !ok {
			continue
		}
		for _, idx := range f {
			sums[idx] = sums[idx].Add(n)
		}
	}
	for i := range m.Vertices {
		l := sums[i].Len()
		if l < 1e-12 {
			m.Vertices[i].Normal = mgl64.Vec3{0, 1, 0}
			continue
		}
		m.Vertices[i].Normal = sums[i].Mul(1 / l)
	}
}

// computeBounds refreshes the bounding box and the bounding sphere about the
// local origin. Builders emit meshes centered on their origin.
func computeBounds(m *Mesh) {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		m.Sphere = Sphere{}
		return
	}

	b := Bounds{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			b.Min[k] = math.Min(b.Min[k], v.Position[k])
			b.Max[k] = math.Max(b.Max[k], v.Position[k])
		}
	}
	m.Bounds = b

	var r2 float64
	for _, v := range m.Vertices {
		r2 = math.Max(r2, v.Position.Dot(v.Position))
	}
	m.Sphere = Sphere{Radius: math.Sqrt(r2)}
}

// translate moves every vertex by offset.
func translate(m *Mesh, offset mgl64.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Add(offset)
	}
}

// HorizontalRadius is the distance of p from the vertical (Y) axis.
func HorizontalRadius(p mgl64.Vec3) float64 {
	return math.Hypot(p[0], p[2])
}
