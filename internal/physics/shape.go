package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMargin is the contact skin applied to shapes that do not set one.
const DefaultMargin = 0.01

// cylinderSides is the tessellation used for cylinder and cone contacts.
const cylinderSides = 16

// ErrInvalidShape is returned for shapes with degenerate dimensions.
var ErrInvalidShape = errors.New("invalid collision shape")

// positiveFinite reports x > 0 and not +Inf. NaN fails the comparison.
func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// Kind tags the closed set of collision shape variants.
type Kind int

const (
	KindBox Kind = iota
	KindSphere
	KindCylinder
	KindCone
	KindPlane
	KindConvexHull
	KindCompound
)

var kindNames = [...]string{"box", "sphere", "cylinder", "cone", "plane", "convexHull", "compound"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shape is a collision shape. The set of implementations is closed: Box,
// Sphere, Cylinder, Cone, Plane, ConvexHull and Compound.
type Shape interface {
	Kind() Kind
	Margin() float64
	SetMargin(m float64)

	// bounds returns the world-space box of the shape under tr, without margin.
	bounds(tr Transform) AABB
	// inertia returns the local inertia tensor about the shape origin.
	inertia(mass float64) mgl64.Mat3
}

// convex is implemented by shapes with a polyhedral contact representation.
type convex interface {
	polytope() *Polytope
}

// Box is a box centered on its origin.
type Box struct {
	HalfExtents mgl64.Vec3
	margin      float64
	poly        *Polytope
}

// NewBox creates a box with the given half extents.
func NewBox(halfExtents mgl64.Vec3) (*Box, error) {
	if !positiveFinite(halfExtents[0]) || !positiveFinite(halfExtents[1]) || !positiveFinite(halfExtents[2]) {
		return nil, fmt.Errorf("%w: box half extents %v", ErrInvalidShape, halfExtents)
	}
	h := halfExtents
	corners := []mgl64.Vec3{
		{-h[0], -h[1], -h[2]}, {h[0], -h[1], -h[2]}, {h[0], h[1], -h[2]}, {-h[0], h[1], -h[2]},
		{-h[0], -h[1], h[2]}, {h[0], -h[1], h[2]}, {h[0], h[1], h[2]}, {-h[0], h[1], h[2]},
	}
	poly, err := NewPolytope(corners)
	if err != nil {
		return nil, err
	}
	return &Box{HalfExtents: halfExtents, margin: DefaultMargin, poly: poly}, nil
}

func (s *Box) Kind() Kind               { return KindBox }
func (s *Box) Margin() float64          { return s.margin }
func (s *Box) SetMargin(m float64)      { s.margin = m }
func (s *Box) polytope() *Polytope      { return s.poly }
func (s *Box) bounds(tr Transform) AABB { return boxAABB(s.HalfExtents, tr) }

func (s *Box) inertia(mass float64) mgl64.Mat3 {
	return boxInertia(mass, s.HalfExtents)
}

// Sphere is a sphere centered on its origin.
type Sphere struct {
	Radius float64
	margin float64
}

// NewSphere creates a sphere.
func NewSphere(radius float64) (*Sphere, error) {
	if !positiveFinite(radius) {
		return nil, fmt.Errorf("%w: sphere radius %g", ErrInvalidShape, radius)
	}
	return &Sphere{Radius: radius, margin: DefaultMargin}, nil
}

func (s *Sphere) Kind() Kind          { return KindSphere }
func (s *Sphere) Margin() float64     { return s.margin }
func (s *Sphere) SetMargin(m float64) { s.margin = m }

func (s *Sphere) bounds(tr Transform) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: tr.Origin.Sub(r), Max: tr.Origin.Add(r)}
}

func (s *Sphere) inertia(mass float64) mgl64.Mat3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

// Cylinder is a solid cylinder around the local Y axis.
type Cylinder struct {
	Radius     float64
	HalfHeight float64
	margin     float64
	poly       *Polytope
}

// NewCylinder creates a Y-axis cylinder.
func NewCylinder(radius, halfHeight float64) (*Cylinder, error) {
	if !positiveFinite(radius) || !positiveFinite(halfHeight) {
		return nil, fmt.Errorf("%w: cylinder radius %g half height %g", ErrInvalidShape, radius, halfHeight)
	}
	points := make([]mgl64.Vec3, 0, 2*cylinderSides)
	for i := 0; i < cylinderSides; i++ {
		a := 2 * math.Pi * float64(i) / cylinderSides
		x, z := radius*math.Cos(a), radius*math.Sin(a)
		points = append(points, mgl64.Vec3{x, -halfHeight, z}, mgl64.Vec3{x, halfHeight, z})
	}
	poly, err := NewPolytope(points)
	if err != nil {
		return nil, err
	}
	return &Cylinder{Radius: radius, HalfHeight: halfHeight, margin: DefaultMargin, poly: poly}, nil
}

func (s *Cylinder) Kind() Kind          { return KindCylinder }
func (s *Cylinder) Margin() float64     { return s.margin }
func (s *Cylinder) SetMargin(m float64) { s.margin = m }
func (s *Cylinder) polytope() *Polytope { return s.poly }

func (s *Cylinder) bounds(tr Transform) AABB {
	return s.poly.bounds(tr)
}

func (s *Cylinder) inertia(mass float64) mgl64.Mat3 {
	h := 2 * s.HalfHeight
	r2 := s.Radius * s.Radius
	side := mass * (3*r2 + h*h) / 12
	return mgl64.Diag3(mgl64.Vec3{side, mass * r2 / 2, side})
}

// Cone is a Y-axis cone centered on half its height, apex up.
type Cone struct {
	Radius float64
	Height float64
	margin float64
	poly   *Polytope
}

// NewCone creates a cone with its base at -height/2 and apex at +height/2.
func NewCone(radius, height float64) (*Cone, error) {
	if !positiveFinite(radius) || !positiveFinite(height) {
		return nil, fmt.Errorf("%w: cone radius %g height %g", ErrInvalidShape, radius, height)
	}
	points := make([]mgl64.Vec3, 0, cylinderSides+1)
	points = append(points, mgl64.Vec3{0, height / 2, 0})
	for i := 0; i < cylinderSides; i++ {
		a := 2 * math.Pi * float64(i) / cylinderSides
		points = append(points, mgl64.Vec3{radius * math.Cos(a), -height / 2, radius * math.Sin(a)})
	}
	poly, err := NewPolytope(points)
	if err != nil {
		return nil, err
	}
	return &Cone{Radius: radius, Height: height, margin: DefaultMargin, poly: poly}, nil
}

func (s *Cone) Kind() Kind          { return KindCone }
func (s *Cone) Margin() float64     { return s.margin }
func (s *Cone) SetMargin(m float64) { s.margin = m }
func (s *Cone) polytope() *Polytope { return s.poly }

func (s *Cone) bounds(tr Transform) AABB {
	return s.poly.bounds(tr)
}

// inertia is taken about the shape origin, a quarter height above the
// center of mass.
func (s *Cone) inertia(mass float64) mgl64.Mat3 {
	r2 := s.Radius * s.Radius
	h2 := s.Height * s.Height
	side := mass * (3*r2/20 + h2/10)
	return mgl64.Diag3(mgl64.Vec3{side, 0.3 * mass * r2, side})
}

// Plane is an infinite static half-space: Normal.x <= Constant is inside.
type Plane struct {
	Normal   mgl64.Vec3
	Constant float64
	margin   float64
}

// NewPlane creates a plane from a normal and its distance to the origin.
func NewPlane(normal mgl64.Vec3, constant float64) (*Plane, error) {
	l := normal.Len()
	if !(l >= 1e-12) || math.IsInf(l, 1) || math.IsNaN(constant) || math.IsInf(constant, 0) {
		return nil, fmt.Errorf("%w: plane normal %v constant %g", ErrInvalidShape, normal, constant)
	}
	return &Plane{Normal: normal.Mul(1 / l), Constant: constant, margin: DefaultMargin}, nil
}

func (s *Plane) Kind() Kind          { return KindPlane }
func (s *Plane) Margin() float64     { return s.margin }
func (s *Plane) SetMargin(m float64) { s.margin = m }

func (s *Plane) bounds(Transform) AABB {
	e := mgl64.Vec3{planeExtent, planeExtent, planeExtent}
	return AABB{Min: e.Mul(-1), Max: e}
}

func (s *Plane) inertia(float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// world returns the plane normal and constant under tr.
func (s *Plane) world(tr Transform) (mgl64.Vec3, float64) {
	n := tr.ApplyVector(s.Normal)
	return n, s.Constant + n.Dot(tr.Origin)
}

// ConvexHull is the convex hull of a point cloud.
type ConvexHull struct {
	margin float64
	poly   *Polytope
}

// NewConvexHull builds the hull of points. Duplicate points are ignored.
func NewConvexHull(points []mgl64.Vec3) (*ConvexHull, error) {
	poly, err := NewPolytope(points)
	if err != nil {
		return nil, err
	}
	return &ConvexHull{margin: DefaultMargin, poly: poly}, nil
}

func (s *ConvexHull) Kind() Kind          { return KindConvexHull }
func (s *ConvexHull) Margin() float64     { return s.margin }
func (s *ConvexHull) SetMargin(m float64) { s.margin = m }
func (s *ConvexHull) polytope() *Polytope { return s.poly }

// Points returns the hull vertices.
func (s *ConvexHull) Points() []mgl64.Vec3 {
	return s.poly.Vertices
}

func (s *ConvexHull) bounds(tr Transform) AABB {
	return s.poly.bounds(tr)
}

// inertia approximates the hull by its local bounding box, offset from the
// shape origin.
func (s *ConvexHull) inertia(mass float64) mgl64.Mat3 {
	local := s.poly.bounds(IdentityTransform())
	return shiftInertia(boxInertia(mass, local.HalfExtents()), mass, local.Center())
}

// Child is one entry of a Compound.
type Child struct {
	Transform Transform
	Shape     Shape
}

// Compound groups child shapes, each placed by its own local transform.
type Compound struct {
	Children []Child
	margin   float64
}

// NewCompound creates an empty compound.
func NewCompound() *Compound {
	return &Compound{margin: DefaultMargin}
}

// AddChild appends a child shape at the given local transform.
func (s *Compound) AddChild(tr Transform, child Shape) {
	s.Children = append(s.Children, Child{Transform: tr, Shape: child})
}

func (s *Compound) Kind() Kind      { return KindCompound }
func (s *Compound) Margin() float64 { return s.margin }

// SetMargin sets the margin of the compound and of every child.
func (s *Compound) SetMargin(m float64) {
	s.margin = m
	for _, c := range s.Children {
		c.Shape.SetMargin(m)
	}
}

func (s *Compound) bounds(tr Transform) AABB {
	box := emptyAABB()
	for _, c := range s.Children {
		box = box.Union(c.Shape.bounds(tr.Mul(c.Transform)))
	}
	return box
}

// inertia splits the mass across children by bounding volume and sums the
// child tensors shifted to the compound origin.
func (s *Compound) inertia(mass float64) mgl64.Mat3 {
	if len(s.Children) == 0 {
		return mgl64.Mat3{}
	}

	volumes := make([]float64, len(s.Children))
	var total float64
	for i, c := range s.Children {
		h := c.Shape.bounds(IdentityTransform()).HalfExtents()
		volumes[i] = 8 * h[0] * h[1] * h[2]
		total += volumes[i]
	}

	var sum mgl64.Mat3
	for i, c := range s.Children {
		share := mass / float64(len(s.Children))
		if total > 0 {
			share = mass * volumes[i] / total
		}
		r := c.Transform.Rotation()
		local := r.Mul3(c.Shape.inertia(share)).Mul3(r.Transpose())
		sum = sum.Add(shiftInertia(local, share, c.Transform.Origin))
	}
	return sum
}

// boxInertia is the inertia of a solid box about its center.
func boxInertia(mass float64, half mgl64.Vec3) mgl64.Mat3 {
	lx, ly, lz := 2*half[0], 2*half[1], 2*half[2]
	return mgl64.Diag3(mgl64.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	})
}

// shiftInertia applies the parallel axis theorem for a mass displaced by d.
func shiftInertia(inertia mgl64.Mat3, mass float64, d mgl64.Vec3) mgl64.Mat3 {
	dd := d.Dot(d)
	var shift mgl64.Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			v := -d[row] * d[col]
			if row == col {
				v += dd
			}
			shift[col*3+row] = mass * v
		}
	}
	return inertia.Add(shift)
}
