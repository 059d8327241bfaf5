package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxManifoldPoints is the number of contacts kept per leaf pair.
const maxManifoldPoints = 4

// contactPoint is a raw narrowphase result. The normal points from B toward
// A and sep is negative when the shapes overlap.
type contactPoint struct {
	pointB mgl64.Vec3
	normal mgl64.Vec3
	sep    float64
}

func (c contactPoint) pointA() mgl64.Vec3 {
	return c.pointB.Add(c.normal.Mul(c.sep))
}

// flipContacts swaps the roles of A and B.
func flipContacts(cs []contactPoint) []contactPoint {
	for i, c := range cs {
		cs[i] = contactPoint{pointB: c.pointA(), normal: c.normal.Mul(-1), sep: c.sep}
	}
	return cs
}

type leafKey struct {
	body, leaf int
}

// place returns the world polytope of a convex leaf, cached per step.
func (w *World) place(b *RigidBody, l leaf, c convex, tr Transform) *worldPolytope {
	key := leafKey{b.id, l.index}
	if p, ok := w.placed[key]; ok {
		return p
	}
	p := placePolytope(c.polytope(), tr)
	w.placed[key] = p
	return p
}

// collideLeaves generates contacts between two leaves closer than threshold.
func (w *World) collideLeaves(a *RigidBody, la leaf, b *RigidBody, lb leaf, threshold float64) []contactPoint {
	trA := a.transform.Mul(la.local)
	trB := b.transform.Mul(lb.local)

	switch sa := la.shape.(type) {
	case *Sphere:
		switch sb := lb.shape.(type) {
		case *Sphere:
			return sphereSphere(trA.Origin, sa.Radius, trB.Origin, sb.Radius, threshold)
		case *Plane:
			n, c := sb.world(trB)
			return spherePlane(trA.Origin, sa.Radius, n, c, threshold)
		case convex:
			return sphereConvex(trA.Origin, sa.Radius, w.place(b, lb, sb, trB), threshold)
		}

	case *Plane:
		n, c := sa.world(trA)
		switch sb := lb.shape.(type) {
		case *Sphere:
			return flipContacts(spherePlane(trB.Origin, sb.Radius, n, c, threshold))
		case convex:
			return flipContacts(convexPlane(w.place(b, lb, sb, trB), n, c, threshold))
		}

	case convex:
		pa := w.place(a, la, sa, trA)
		switch sb := lb.shape.(type) {
		case *Sphere:
			return flipContacts(sphereConvex(trB.Origin, sb.Radius, pa, threshold))
		case *Plane:
			n, c := sb.world(trB)
			return convexPlane(pa, n, c, threshold)
		case convex:
			return convexConvex(pa, w.place(b, lb, sb, trB), threshold)
		}
	}
	return nil
}

func sphereSphere(ca mgl64.Vec3, ra float64, cb mgl64.Vec3, rb, threshold float64) []contactPoint {
	d := ca.Sub(cb)
	dist := d.Len()
	sep := dist - ra - rb
	if sep > threshold {
		return nil
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return []contactPoint{{pointB: cb.Add(n.Mul(rb)), normal: n, sep: sep}}
}

func spherePlane(center mgl64.Vec3, r float64, n mgl64.Vec3, c, threshold float64) []contactPoint {
	dist := n.Dot(center) - c
	sep := dist - r
	if sep > threshold {
		return nil
	}
	return []contactPoint{{pointB: center.Sub(n.Mul(dist)), normal: n, sep: sep}}
}

// sphereConvex collides sphere A with polytope B.
func sphereConvex(center mgl64.Vec3, r float64, pb *worldPolytope, threshold float64) []contactPoint {
	best, bestFace := math.Inf(-1), -1
	for i, n := range pb.normals {
		d := n.Dot(center) - pb.offsets[i]
		if d > best {
			best, bestFace = d, i
		}
	}
	if bestFace < 0 || best-r > threshold {
		return nil
	}

	if best <= 0 {
		// Center inside: push out through the nearest face.
		n := pb.normals[bestFace]
		return []contactPoint{{pointB: center.Sub(n.Mul(best)), normal: n, sep: best - r}}
	}

	closest, dist2 := mgl64.Vec3{}, math.Inf(1)
	for i, n := range pb.normals {
		if n.Dot(center)-pb.offsets[i] <= 0 {
			continue
		}
		q := closestOnPolygon(center, pb.facePolygon(i), n)
		if d2 := q.Sub(center).LenSqr(); d2 < dist2 {
			closest, dist2 = q, d2
		}
	}
	dist := math.Sqrt(dist2)
	sep := dist - r
	if sep > threshold {
		return nil
	}
	n := pb.normals[bestFace]
	if dist > 1e-12 {
		n = center.Sub(closest).Mul(1 / dist)
	}
	return []contactPoint{{pointB: closest, normal: n, sep: sep}}
}

// closestOnPolygon returns the point of a planar convex polygon, wound
// counter-clockwise about n, closest to p.
func closestOnPolygon(p mgl64.Vec3, poly []mgl64.Vec3, n mgl64.Vec3) mgl64.Vec3 {
	proj := p.Sub(n.Mul(n.Dot(p.Sub(poly[0]))))
	inside := true
	for k := range poly {
		a, b := poly[k], poly[(k+1)%len(poly)]
		if b.Sub(a).Cross(proj.Sub(a)).Dot(n) < 0 {
			inside = false
			break
		}
	}
	if inside {
		return proj
	}

	best, bestD := poly[0], math.Inf(1)
	for k := range poly {
		q := closestOnSegment(p, poly[k], poly[(k+1)%len(poly)])
		if d := q.Sub(p).LenSqr(); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}

func closestOnSegment(p, a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	l2 := ab.LenSqr()
	if l2 < 1e-24 {
		return a
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return a.Add(ab.Mul(t))
}

// convexPlane collides polytope A with plane B.
func convexPlane(pa *worldPolytope, n mgl64.Vec3, c, threshold float64) []contactPoint {
	var out []contactPoint
	for _, v := range pa.verts {
		s := n.Dot(v) - c
		if s <= threshold {
			out = append(out, contactPoint{pointB: v.Sub(n.Mul(s)), normal: n, sep: s})
		}
	}
	return reduceContacts(out)
}

// faceSeparation returns the face of ref that best separates it from other
// and the signed gap along that face normal.
func faceSeparation(ref, other *worldPolytope) (float64, int) {
	best, face := math.Inf(-1), -1
	for i, n := range ref.normals {
		lo, _ := other.project(n)
		if s := lo - ref.offsets[i]; s > best {
			best, face = s, i
		}
	}
	return best, face
}

// edgesSeparated reports whether a cross product of edge directions
// separates the polytopes by more than threshold.
func edgesSeparated(pa, pb *worldPolytope, threshold float64) bool {
	towardA := pa.centroid.Sub(pb.centroid)
	for _, ea := range pa.edges {
		for _, eb := range pb.edges {
			axis := ea.Cross(eb)
			l := axis.Len()
			if l < 1e-6 {
				continue
			}
			axis = axis.Mul(1 / l)
			if axis.Dot(towardA) < 0 {
				axis = axis.Mul(-1)
			}
			loA, _ := pa.project(axis)
			_, hiB := pb.project(axis)
			if loA-hiB > threshold {
				return true
			}
		}
	}
	return false
}

// convexConvex collides two polytopes with the separating axis test and
// builds the manifold by clipping the incident face against the reference
// face.
func convexConvex(pa, pb *worldPolytope, threshold float64) []contactPoint {
	sepA, faceA := faceSeparation(pa, pb)
	if faceA < 0 || sepA > threshold {
		return nil
	}
	sepB, faceB := faceSeparation(pb, pa)
	if faceB < 0 || sepB > threshold {
		return nil
	}
	if edgesSeparated(pa, pb, threshold) {
		return nil
	}

	const relTol, absTol = 0.98, 0.001
	if sepB > relTol*sepA+absTol {
		return clipFaces(pb, faceB, pa, threshold, false)
	}
	return clipFaces(pa, faceA, pb, threshold, true)
}

// clipFaces clips the face of inc most opposed to the reference face of ref.
// refIsA tells which side of the pair ref is on.
func clipFaces(ref *worldPolytope, refFace int, inc *worldPolytope, threshold float64, refIsA bool) []contactPoint {
	nR := ref.normals[refFace]
	oR := ref.offsets[refFace]

	incFace, minDot := 0, math.Inf(1)
	for i, n := range inc.normals {
		if d := n.Dot(nR); d < minDot {
			incFace, minDot = i, d
		}
	}

	poly := inc.facePolygon(incFace)
	refPoly := ref.facePolygon(refFace)
	for k := range refPoly {
		a, b := refPoly[k], refPoly[(k+1)%len(refPoly)]
		side := b.Sub(a).Cross(nR)
		l := side.Len()
		if l < 1e-12 {
			continue
		}
		side = side.Mul(1 / l)
		poly = clipPolygon(poly, side, side.Dot(a))
		if len(poly) == 0 {
			break
		}
	}

	if len(poly) == 0 {
		// Clipping lost everything; use the deepest incident vertex.
		deepest, depth := mgl64.Vec3{}, math.Inf(1)
		for _, v := range inc.verts {
			if s := nR.Dot(v) - oR; s < depth {
				deepest, depth = v, s
			}
		}
		poly = []mgl64.Vec3{deepest}
	}

	var out []contactPoint
	for _, p := range poly {
		s := nR.Dot(p) - oR
		if s > threshold {
			continue
		}
		if refIsA {
			// p lies on B and the normal must point toward A.
			out = append(out, contactPoint{pointB: p, normal: nR.Mul(-1), sep: s})
		} else {
			out = append(out, contactPoint{pointB: p.Sub(nR.Mul(s)), normal: nR, sep: s})
		}
	}
	return reduceContacts(out)
}

// clipPolygon keeps the part of poly with n.p <= d.
func clipPolygon(poly []mgl64.Vec3, n mgl64.Vec3, d float64) []mgl64.Vec3 {
	if len(poly) == 0 {
		return nil
	}
	out := make([]mgl64.Vec3, 0, len(poly)+2)
	prev := poly[len(poly)-1]
	prevD := n.Dot(prev) - d
	for _, cur := range poly {
		curD := n.Dot(cur) - d
		if curD <= 0 {
			if prevD > 0 {
				out = append(out, lerpAt(prev, cur, prevD, curD))
			}
			out = append(out, cur)
		} else if prevD <= 0 {
			out = append(out, lerpAt(prev, cur, prevD, curD))
		}
		prev, prevD = cur, curD
	}
	return out
}

func lerpAt(a, b mgl64.Vec3, da, db float64) mgl64.Vec3 {
	t := da / (da - db)
	return a.Add(b.Sub(a).Mul(t))
}

// reduceContacts keeps at most four points: the deepest, the one farthest
// from it, the one farthest from their line, and the one that grows the
// covered area most.
func reduceContacts(cs []contactPoint) []contactPoint {
	if len(cs) <= maxManifoldPoints {
		return cs
	}

	used := make([]bool, len(cs))
	pick := func(score func(c contactPoint) float64) int {
		best, bestScore := -1, math.Inf(-1)
		for i, c := range cs {
			if used[i] {
				continue
			}
			if s := score(c); best < 0 || s > bestScore {
				best, bestScore = i, s
			}
		}
		used[best] = true
		return best
	}

	i0 := pick(func(c contactPoint) float64 { return -c.sep })
	p0 := cs[i0].pointB
	i1 := pick(func(c contactPoint) float64 { return c.pointB.Sub(p0).LenSqr() })
	p1 := cs[i1].pointB
	i2 := pick(func(c contactPoint) float64 {
		return p1.Sub(p0).Cross(c.pointB.Sub(p0)).LenSqr()
	})
	p2 := cs[i2].pointB
	i3 := pick(func(c contactPoint) float64 {
		q := c.pointB
		return p0.Sub(q).Cross(p1.Sub(q)).Len() +
			p1.Sub(q).Cross(p2.Sub(q)).Len() +
			p2.Sub(q).Cross(p0.Sub(q)).Len()
	})

	return []contactPoint{cs[i0], cs[i1], cs[i2], cs[i3]}
}
