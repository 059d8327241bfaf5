package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// planeExtent bounds infinite planes in the broadphase.
const planeExtent = 1e9

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func emptyAABB() AABB {
	return AABB{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// Overlaps reports whether the boxes intersect or touch.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

// Union returns the smallest box containing both boxes.
func (a AABB) Union(b AABB) AABB {
	for k := 0; k < 3; k++ {
		a.Min[k] = math.Min(a.Min[k], b.Min[k])
		a.Max[k] = math.Max(a.Max[k], b.Max[k])
	}
	return a
}

// Expand grows the box by d on every side.
func (a AABB) Expand(d float64) AABB {
	e := mgl64.Vec3{d, d, d}
	return AABB{Min: a.Min.Sub(e), Max: a.Max.Add(e)}
}

// Extend grows the box to contain p.
func (a AABB) Extend(p mgl64.Vec3) AABB {
	for k := 0; k < 3; k++ {
		a.Min[k] = math.Min(a.Min[k], p[k])
		a.Max[k] = math.Max(a.Max[k], p[k])
	}
	return a
}

// Center returns the middle of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns half the box size along each axis.
func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// boxAABB bounds an oriented box with the given half extents.
func boxAABB(half mgl64.Vec3, tr Transform) AABB {
	r := tr.Rotation()
	var ext mgl64.Vec3
	for row := 0; row < 3; row++ {
		ext[row] = math.Abs(r.At(row, 0))*half[0] + math.Abs(r.At(row, 1))*half[1] + math.Abs(r.At(row, 2))*half[2]
	}
	return AABB{Min: tr.Origin.Sub(ext), Max: tr.Origin.Add(ext)}
}
