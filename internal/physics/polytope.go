package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// maxHullPoints caps the points fed to hull construction. Larger clouds are
// reduced to their support points along a fixed set of directions.
const maxHullPoints = 64

// hullDirections is the number of sample directions used for reduction.
const hullDirections = 62

// PolyFace is a planar convex face of a Polytope.
type PolyFace struct {
	// Indices into Polytope.Vertices, counter-clockwise seen from outside.
	Indices []int
	Normal  mgl64.Vec3
	Offset  float64
}

// Polytope is a convex polyhedron with explicit faces, used for contacts.
type Polytope struct {
	Vertices []mgl64.Vec3
	Faces    []PolyFace
	// Edges holds one unit direction per distinct edge orientation.
	Edges []mgl64.Vec3
}

// NewPolytope computes the convex hull of points. It fails when the points
// do not span a volume.
func NewPolytope(points []mgl64.Vec3) (*Polytope, error) {
	for _, p := range points {
		if !finiteVec(p) {
			return nil, fmt.Errorf("%w: non-finite hull point %v", ErrInvalidShape, p)
		}
	}
	pts := uniquePoints(points)
	if len(pts) > maxHullPoints {
		pts = reducePoints(pts)
	}
	if len(pts) < 4 {
		return nil, fmt.Errorf("%w: hull needs 4 distinct points, got %d", ErrInvalidShape, len(pts))
	}

	var extent float64
	for _, p := range pts {
		for k := 0; k < 3; k++ {
			extent = math.Max(extent, math.Abs(p[k]))
		}
	}
	tol := 1e-9 * math.Max(extent, 1e-3)

	var planes []PolyFace
	n := len(pts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				normal := pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i]))
				l := normal.Len()
				if l < tol*extent {
					continue
				}
				normal = normal.Mul(1 / l)
				offset := normal.Dot(pts[i])

				above, below := false, false
				for _, p := range pts {
					s := normal.Dot(p) - offset
					if s > tol {
						above = true
					} else if s < -tol {
						below = true
					}
					if above && below {
						break
					}
				}
				switch {
				case above && below:
					continue
				case above:
					normal, offset = normal.Mul(-1), -offset
				}
				planes = addPlane(planes, normal, offset, tol)
			}
		}
	}

	if len(planes) < 4 {
		return nil, fmt.Errorf("%w: points are coplanar", ErrInvalidShape)
	}

	poly := &Polytope{Vertices: pts}
	for _, pl := range planes {
		pl.Indices = faceLoop(pts, pl.Normal, pl.Offset, tol)
		if len(pl.Indices) >= 3 {
			poly.Faces = append(poly.Faces, pl)
		}
	}
	poly.Edges = edgeDirections(poly)
	return poly, nil
}

// uniquePoints drops exact and near-exact duplicates, keeping first occurrence.
func uniquePoints(points []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(points))
	for _, p := range points {
		dup := false
		for _, q := range out {
			if p.Sub(q).Len() < 1e-9 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// reducePoints keeps the support point of the cloud along evenly spread
// directions on the unit sphere.
func reducePoints(points []mgl64.Vec3) []mgl64.Vec3 {
	golden := math.Pi * (3 - math.Sqrt(5))
	chosen := make(map[int]bool, hullDirections)
	for i := 0; i < hullDirections; i++ {
		y := 1 - 2*(float64(i)+0.5)/hullDirections
		r := math.Sqrt(1 - y*y)
		dir := mgl64.Vec3{r * math.Cos(golden*float64(i)), y, r * math.Sin(golden*float64(i))}
		chosen[supportIndex(points, dir)] = true
	}

	idx := make([]int, 0, len(chosen))
	for i := range chosen {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]mgl64.Vec3, len(idx))
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}

func supportIndex(points []mgl64.Vec3, dir mgl64.Vec3) int {
	best, bestDot := 0, math.Inf(-1)
	for i, p := range points {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

func addPlane(planes []PolyFace, normal mgl64.Vec3, offset, tol float64) []PolyFace {
	for _, pl := range planes {
		if pl.Normal.Sub(normal).Len() < 1e-6 && math.Abs(pl.Offset-offset) < 1e3*tol {
			return planes
		}
	}
	return append(planes, PolyFace{Normal: normal, Offset: offset})
}

// faceLoop returns the points lying on a plane ordered counter-clockwise
// around its normal.
func faceLoop(pts []mgl64.Vec3, normal mgl64.Vec3, offset, tol float64) []int {
	var idx []int
	var centroid mgl64.Vec3
	for i, p := range pts {
		if math.Abs(normal.Dot(p)-offset) <= 1e3*tol {
			idx = append(idx, i)
			centroid = centroid.Add(p)
		}
	}
	if len(idx) < 3 {
		return nil
	}
	centroid = centroid.Mul(1 / float64(len(idx)))

	u := pts[idx[0]].Sub(centroid)
	u = u.Sub(normal.Mul(u.Dot(normal)))
	if u.Len() < 1e-12 {
		u, _ = planeSpace(normal)
	}
	u = u.Normalize()
	v := normal.Cross(u)

	angle := make(map[int]float64, len(idx))
	for _, i := range idx {
		d := pts[i].Sub(centroid)
		angle[i] = math.Atan2(d.Dot(v), d.Dot(u))
	}
	sort.SliceStable(idx, func(a, b int) bool { return angle[idx[a]] < angle[idx[b]] })
	return idx
}

func edgeDirections(poly *Polytope) []mgl64.Vec3 {
	var dirs []mgl64.Vec3
	for _, f := range poly.Faces {
		for i := range f.Indices {
			a := poly.Vertices[f.Indices[i]]
			b := poly.Vertices[f.Indices[(i+1)%len(f.Indices)]]
			d := b.Sub(a)
			l := d.Len()
			if l < 1e-12 {
				continue
			}
			d = d.Mul(1 / l)
			dup := false
			for _, e := range dirs {
				if e.Cross(d).Len() < 1e-6 {
					dup = true
					break
				}
			}
			if !dup {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

func (p *Polytope) bounds(tr Transform) AABB {
	box := emptyAABB()
	for _, v := range p.Vertices {
		box = box.Extend(tr.Apply(v))
	}
	return box
}

// worldPolytope is a polytope placed in world space for one collision query.
type worldPolytope struct {
	src      *Polytope
	verts    []mgl64.Vec3
	normals  []mgl64.Vec3
	offsets  []float64
	edges    []mgl64.Vec3
	centroid mgl64.Vec3
}

func placePolytope(p *Polytope, tr Transform) *worldPolytope {
	w := &worldPolytope{
		src:     p,
		verts:   make([]mgl64.Vec3, len(p.Vertices)),
		normals: make([]mgl64.Vec3, len(p.Faces)),
		offsets: make([]float64, len(p.Faces)),
		edges:   make([]mgl64.Vec3, len(p.Edges)),
	}
	for i, v := range p.Vertices {
		w.verts[i] = tr.Apply(v)
		w.centroid = w.centroid.Add(w.verts[i])
	}
	w.centroid = w.centroid.Mul(1 / float64(len(w.verts)))
	for i, f := range p.Faces {
		w.normals[i] = tr.ApplyVector(f.Normal)
		w.offsets[i] = w.normals[i].Dot(w.verts[f.Indices[0]])
	}
	for i, e := range p.Edges {
		w.edges[i] = tr.ApplyVector(e)
	}
	return w
}

// project returns the extent of the vertices along axis.
func (w *worldPolytope) project(axis mgl64.Vec3) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range w.verts {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// facePolygon returns the world positions of face i.
func (w *worldPolytope) facePolygon(i int) []mgl64.Vec3 {
	idx := w.src.Faces[i].Indices
	out := make([]mgl64.Vec3, len(idx))
	for k, j := range idx {
		out[k] = w.verts[j]
	}
	return out
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
