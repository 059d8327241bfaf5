package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/logger"
)

// DefaultGroupSize is the vertex run length used to decompose meshes that
// declare no convex groups. It matches one ring slice.
const DefaultGroupSize = 8

// DescKind selects what BuildShape produces.
type DescKind int

const (
	DescUnknown DescKind = iota
	DescBox
	DescSphere
	DescCylinder
	DescCone
	DescPlane
	// DescHull wraps every mesh vertex in a single convex hull.
	DescHull
	// DescDecompose builds one hull per convex mesh group inside a compound.
	DescDecompose
	// DescCompound builds each entry of Children at its offset.
	DescCompound
)

var descNames = map[string]DescKind{
	"box":         DescBox,
	"sphere":      DescSphere,
	"cylinder":    DescCylinder,
	"cone":        DescCone,
	"plane":       DescPlane,
	"hull":        DescHull,
	"convexMesh":  DescHull,
	"convex":      DescHull,
	"mesh":        DescHull,
	"hacd":        DescDecompose,
	"vhacd":       DescDecompose,
	"concaveMesh": DescDecompose,
	"concave":     DescDecompose,
	"extrude":     DescDecompose,
	"compound":    DescCompound,
}

// ParseDescKind maps a shape name, including the legacy aliases, to a
// DescKind. Unrecognised names yield DescUnknown.
func ParseDescKind(name string) DescKind {
	if k, ok := descNames[name]; ok {
		return k
	}
	for alias, k := range descNames {
		if strings.EqualFold(alias, name) {
			return k
		}
	}
	return DescUnknown
}

func (k DescKind) String() string {
	switch k {
	case DescBox:
		return "box"
	case DescSphere:
		return "sphere"
	case DescCylinder:
		return "cylinder"
	case DescCone:
		return "cone"
	case DescPlane:
		return "plane"
	case DescHull:
		return "hull"
	case DescDecompose:
		return "hacd"
	case DescCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// ShapeDesc describes a collision shape to build. Dimensions left at zero
// are derived from Mesh when one is given.
type ShapeDesc struct {
	Kind DescKind

	HalfExtents mgl64.Vec3 // box
	Radius      float64    // sphere, cylinder, cone
	Height      float64    // cylinder, cone (full height)
	Normal      mgl64.Vec3 // plane
	Constant    float64    // plane

	// Mesh supplies points for hulls and decomposition.
	Mesh *mesh.Mesh
	// GroupSize is the run length used when Mesh has no groups.
	GroupSize int

	// Offset places the shape inside a parent compound.
	Offset mgl64.Vec3
	// Scale is a local scaling baked into the dimensions; zero means none.
	Scale mgl64.Vec3
	// Margin is the contact skin; zero selects DefaultMargin.
	Margin float64

	Children []ShapeDesc
}

func (d ShapeDesc) scale() mgl64.Vec3 {
	if d.Scale == (mgl64.Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return d.Scale
}

func (d ShapeDesc) margin() float64 {
	if d.Margin <= 0 {
		return DefaultMargin
	}
	return d.Margin
}

// BuildShape builds the collision shape described by d and applies its
// margin. Unknown kinds become a unit box and an empty decomposition becomes
// a box around the source bounds.
func BuildShape(d ShapeDesc) (Shape, error) {
	s, err := buildShape(d)
	if err != nil {
		return nil, err
	}
	s.SetMargin(d.margin())
	return s, nil
}

func buildShape(d ShapeDesc) (Shape, error) {
	sc := d.scale()

	switch d.Kind {
	case DescBox:
		half := d.HalfExtents
		if half == (mgl64.Vec3{}) && d.Mesh != nil {
			half = d.Mesh.Bounds.Size().Mul(0.5)
		}
		return NewBox(mul(half, sc))

	case DescSphere:
		r := d.Radius
		if r == 0 && d.Mesh != nil {
			r = d.Mesh.Sphere.Radius
		}
		return NewSphere(r * maxAbs(sc))

	case DescCylinder, DescCone:
		r, h := d.Radius, d.Height
		if d.Mesh != nil {
			size := d.Mesh.Bounds.Size()
			if r == 0 {
				r = math.Max(size[0], size[2]) / 2
			}
			if h == 0 {
				h = size[1]
			}
		}
		r *= math.Max(math.Abs(sc[0]), math.Abs(sc[2]))
		h *= math.Abs(sc[1])
		if d.Kind == DescCone {
			return NewCone(r, h)
		}
		return NewCylinder(r, h/2)

	case DescPlane:
		n := d.Normal
		if n == (mgl64.Vec3{}) {
			n = mgl64.Vec3{0, 1, 0}
		}
		return NewPlane(n, d.Constant)

	case DescHull:
		if d.Mesh == nil || len(d.Mesh.Vertices) == 0 {
			return fallbackBox(d, "hull without mesh")
		}
		hull, err := NewConvexHull(scalePoints(d.Mesh.Positions(), sc))
		if err != nil {
			return fallbackBox(d, err.Error())
		}
		return hull, nil

	case DescDecompose:
		return decompose(d)

	case DescCompound:
		return buildCompound(d)

	default:
		logger.Debug("unknown shape kind, using unit box", zap.Int("kind", int(d.Kind)))
		return NewBox(mul(mgl64.Vec3{0.5, 0.5, 0.5}, sc))
	}
}

// decompose builds one convex hull per mesh group and collects them in a
// compound. Groups that do not span a volume are skipped.
func decompose(d ShapeDesc) (Shape, error) {
	if d.Mesh == nil {
		return fallbackBox(d, "decomposition without mesh")
	}

	groups := d.Mesh.Groups
	if len(groups) == 0 {
		groups = chunkVertices(len(d.Mesh.Vertices), d.GroupSize)
	}

	sc := d.scale()
	compound := NewCompound()
	for i, g := range groups {
		points := make([]mgl64.Vec3, len(g))
		for k, idx := range g {
			points[k] = mul(d.Mesh.Vertices[idx].Position, sc)
		}
		hull, err := NewConvexHull(points)
		if err != nil {
			logger.Debug("skipping degenerate hull group", zap.Int("group", i), zap.Error(err))
			continue
		}
		compound.AddChild(Translation(mul(d.Offset, sc)), hull)
	}

	if len(compound.Children) == 0 {
		return fallbackBox(d, "decomposition produced no hulls")
	}
	return compound, nil
}

func buildCompound(d ShapeDesc) (Shape, error) {
	sc := d.scale()
	compound := NewCompound()
	for i, cd := range d.Children {
		// The child offset places it here, not inside itself.
		offset := mul(cd.Offset, sc)
		cd.Offset = mgl64.Vec3{}
		cd.Scale = mul(cd.scale(), sc)
		child, err := BuildShape(cd)
		if err != nil {
			return nil, fmt.Errorf("compound child %d: %w", i, err)
		}
		compound.AddChild(Translation(offset), child)
	}
	if len(compound.Children) == 0 {
		return fallbackBox(d, "compound without children")
	}
	return compound, nil
}

// fallbackBox approximates d by a box from the mesh bounds, the declared
// half extents, or a unit box, in that order.
func fallbackBox(d ShapeDesc, reason string) (Shape, error) {
	half := mgl64.Vec3{0.5, 0.5, 0.5}
	switch {
	case d.Mesh != nil && len(d.Mesh.Vertices) > 0:
		size := d.Mesh.Bounds.Size().Mul(0.5)
		for k := 0; k < 3; k++ {
			size[k] = math.Max(size[k], 0.005)
		}
		half = size
	case d.HalfExtents[0] > 0 && d.HalfExtents[1] > 0 && d.HalfExtents[2] > 0:
		half = d.HalfExtents
	}
	logger.Debug("collision shape fallback to box",
		zap.String("kind", d.Kind.String()),
		zap.String("reason", reason),
	)
	return NewBox(mul(half, d.scale()))
}

func chunkVertices(n, size int) [][]uint32 {
	if size <= 0 {
		size = DefaultGroupSize
	}
	var groups [][]uint32
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		g := make([]uint32, 0, end-start)
		for i := start; i < end; i++ {
			g = append(g, uint32(i))
		}
		groups = append(groups, g)
	}
	return groups
}

func mul(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func maxAbs(v mgl64.Vec3) float64 {
	return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
}

func scalePoints(points []mgl64.Vec3, sc mgl64.Vec3) []mgl64.Vec3 {
	for i := range points {
		points[i] = mul(points[i], sc)
	}
	return points
}
