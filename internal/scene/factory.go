package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/physics"
)

// Factory builds the mesh and collision setup for one kind of object. A
// factory may be reconfigured between spawns; every spawn gets fresh
// geometry.
type Factory interface {
	Kind() string
	Color() Color
	Model() (*mesh.Mesh, error)
	Physics(m *mesh.Mesh) (Body, error)
}

// Body is the physics half of a spawn.
type Body struct {
	Shape   physics.Shape
	Mass    float64
	Options physics.BodyOptions
}

// PuckFactory builds annular "cave cylinder" pucks.
type PuckFactory struct {
	Params    mesh.RingParams
	Paint     Color
	Mass      float64
	Collision physics.DescKind
	Margin    float64
	Material  physics.BodyOptions
}

// NewPuckFactory returns a factory with the given ring and default collision
// decomposition.
func NewPuckFactory(p mesh.RingParams, color Color, mass float64) *PuckFactory {
	return &PuckFactory{
		Params:    p,
		Paint:     color,
		Mass:      mass,
		Collision: physics.DescDecompose,
		Material:  physics.DefaultBodyOptions(),
	}
}

func (f *PuckFactory) Kind() string { return "ring" }
func (f *PuckFactory) Color() Color { return f.Paint }

// SetSegments changes the tessellation, clamped to the supported range.
func (f *PuckFactory) SetSegments(n int) {
	f.Params.Segments = mesh.ClampSegments(n)
}

func (f *PuckFactory) Model() (*mesh.Mesh, error) {
	return mesh.BuildRing(f.Params)
}

func (f *PuckFactory) Physics(m *mesh.Mesh) (Body, error) {
	kind := f.Collision
	if kind == physics.DescUnknown {
		kind = physics.DescDecompose
	}
	shape, err := physics.BuildShape(physics.ShapeDesc{
		Kind:   kind,
		Mesh:   m,
		Radius: f.Params.OuterRadius,
		Height: f.Params.Height,
		Margin: f.Margin,
	})
	if err != nil {
		return Body{}, fmt.Errorf("puck shape: %w", err)
	}
	return Body{Shape: shape, Mass: f.Mass, Options: f.Material}, nil
}

// SphereFactory builds UV spheres with a sphere collision shape.
type SphereFactory struct {
	Radius         float64
	Paint          Color
	Mass           float64
	WidthSegments  int
	HeightSegments int
	Margin         float64
	Material       physics.BodyOptions
}

// NewSphereFactory returns a 32x32 sphere factory with a 0.05 margin.
func NewSphereFactory(radius float64, color Color, mass float64) *SphereFactory {
	return &SphereFactory{
		Radius:         radius,
		Paint:          color,
		Mass:           mass,
		WidthSegments:  32,
		HeightSegments: 32,
		Margin:         0.05,
		Material:       physics.DefaultBodyOptions(),
	}
}

func (f *SphereFactory) Kind() string { return "sphere" }
func (f *SphereFactory) Color() Color { return f.Paint }

func (f *SphereFactory) Model() (*mesh.Mesh, error) {
	if f.Radius <= 0 {
		return nil, fmt.Errorf("sphere radius %g: %w", f.Radius, physics.ErrInvalidShape)
	}
	return mesh.BuildSphere(f.Radius, f.WidthSegments, f.HeightSegments), nil
}

func (f *SphereFactory) Physics(m *mesh.Mesh) (Body, error) {
	shape, err := physics.BuildShape(physics.ShapeDesc{
		Kind:   physics.DescSphere,
		Radius: f.Radius,
		Mesh:   m,
		Margin: f.Margin,
	})
	if err != nil {
		return Body{}, fmt.Errorf("sphere shape: %w", err)
	}
	return Body{Shape: shape, Mass: f.Mass, Options: f.Material}, nil
}

// BoxFactory builds boxes; the table is a static one.
type BoxFactory struct {
	Size     mgl64.Vec3
	Paint    Color
	Mass     float64
	Margin   float64
	Material physics.BodyOptions
}

// NewBoxFactory returns a box factory with default material.
func NewBoxFactory(size mgl64.Vec3, color Color, mass float64) *BoxFactory {
	return &BoxFactory{
		Size:     size,
		Paint:    color,
		Mass:     mass,
		Material: physics.DefaultBodyOptions(),
	}
}

// NewTableFactory returns the static table: a 20x2x20 box with high friction
// so resting objects do not slide.
func NewTableFactory() *BoxFactory {
	f := NewBoxFactory(mgl64.Vec3{20, 2, 20}, MustColor("#a0afa4"), 0)
	f.Margin = 0.05
	f.Material.Friction = 4
	f.Material.RollingFriction = 10
	return f
}

func (f *BoxFactory) Kind() string { return "box" }
func (f *BoxFactory) Color() Color { return f.Paint }

func (f *BoxFactory) Model() (*mesh.Mesh, error) {
	if f.Size[0] <= 0 || f.Size[1] <= 0 || f.Size[2] <= 0 {
		return nil, fmt.Errorf("box size %v: %w", f.Size, physics.ErrInvalidShape)
	}
	return mesh.BuildBox(f.Size), nil
}

func (f *BoxFactory) Physics(m *mesh.Mesh) (Body, error) {
	shape, err := physics.BuildShape(physics.ShapeDesc{
		Kind:        physics.DescBox,
		HalfExtents: f.Size.Mul(0.5),
		Margin:      f.Margin,
	})
	if err != nil {
		return Body{}, fmt.Errorf("box shape: %w", err)
	}
	return Body{Shape: shape, Mass: f.Mass, Options: f.Material}, nil
}
