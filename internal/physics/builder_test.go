package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/pucktable/internal/engine/mesh"
)

func ringMesh(t *testing.T, segments int) *mesh.Mesh {
	t.Helper()
	m, err := mesh.BuildRing(mesh.RingParams{
		OuterRadius: 0.25,
		InnerRadius: 0.2,
		Height:      0.5,
		Segments:    segments,
	})
	if err != nil {
		t.Fatalf("BuildRing: %v", err)
	}
	return m
}

func TestParseDescKind(t *testing.T) {
	tests := []struct {
		name string
		want DescKind
	}{
		{"box", DescBox},
		{"sphere", DescSphere},
		{"cylinder", DescCylinder},
		{"cone", DescCone},
		{"plane", DescPlane},
		{"hull", DescHull},
		{"convexMesh", DescHull},
		{"mesh", DescHull},
		{"convex", DescHull},
		{"hacd", DescDecompose},
		{"vhacd", DescDecompose},
		{"concaveMesh", DescDecompose},
		{"concave", DescDecompose},
		{"extrude", DescDecompose},
		{"compound", DescCompound},
		{"CONVEXMESH", DescHull},
		{"teapot", DescUnknown},
		{"", DescUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDescKind(tt.name); got != tt.want {
				t.Errorf("ParseDescKind(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBuildShapePrimitives(t *testing.T) {
	tests := []struct {
		name   string
		desc   ShapeDesc
		kind   Kind
		margin float64
	}{
		{"box", ShapeDesc{Kind: DescBox, HalfExtents: mgl64.Vec3{10, 1, 10}, Margin: 0.05}, KindBox, 0.05},
		{"sphere", ShapeDesc{Kind: DescSphere, Radius: 0.27}, KindSphere, DefaultMargin},
		{"cylinder", ShapeDesc{Kind: DescCylinder, Radius: 0.25, Height: 0.5}, KindCylinder, DefaultMargin},
		{"cone", ShapeDesc{Kind: DescCone, Radius: 0.25, Height: 0.5}, KindCone, DefaultMargin},
		{"plane", ShapeDesc{Kind: DescPlane}, KindPlane, DefaultMargin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := BuildShape(tt.desc)
			if err != nil {
				t.Fatalf("BuildShape: %v", err)
			}
			if s.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", s.Kind(), tt.kind)
			}
			if s.Margin() != tt.margin {
				t.Errorf("margin = %g, want %g", s.Margin(), tt.margin)
			}
		})
	}
}

func TestBuildShapeDimensionsFromMesh(t *testing.T) {
	m := ringMesh(t, 32)

	s, err := BuildShape(ShapeDesc{Kind: DescCylinder, Mesh: m})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	cyl := s.(*Cylinder)
	if !near(cyl.HalfHeight, 0.25, 1e-9) {
		t.Errorf("half height = %g, want 0.25", cyl.HalfHeight)
	}
	if !near(cyl.Radius, 0.25, 1e-3) {
		t.Errorf("radius = %g, want about 0.25", cyl.Radius)
	}
}

func TestBuildShapeScale(t *testing.T) {
	s, err := BuildShape(ShapeDesc{
		Kind:        DescBox,
		HalfExtents: mgl64.Vec3{1, 1, 1},
		Scale:       mgl64.Vec3{2, 1, 0.5},
	})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	if got := s.(*Box).HalfExtents; got != (mgl64.Vec3{2, 1, 0.5}) {
		t.Errorf("half extents = %v, want [2 1 0.5]", got)
	}
}

func TestBuildShapeUnknownFallsBackToUnitBox(t *testing.T) {
	s, err := BuildShape(ShapeDesc{Kind: DescUnknown})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	box, ok := s.(*Box)
	if !ok {
		t.Fatalf("shape = %T, want *Box", s)
	}
	if box.HalfExtents != (mgl64.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("half extents = %v, want unit box", box.HalfExtents)
	}
}

func TestDecomposeRing(t *testing.T) {
	tests := []struct {
		name     string
		segments int
		kind     DescKind
		noGroups bool
	}{
		{"hacd 32", 32, DescDecompose, false},
		{"extrude alias", 32, ParseDescKind("extrude"), false},
		{"fixed runs", 16, DescDecompose, true},
		{"min segments", 4, DescDecompose, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ringMesh(t, tt.segments)
			if tt.noGroups {
				m.Groups = nil
			}
			s, err := BuildShape(ShapeDesc{Kind: tt.kind, Mesh: m})
			if err != nil {
				t.Fatalf("BuildShape: %v", err)
			}
			c, ok := s.(*Compound)
			if !ok {
				t.Fatalf("shape = %T, want *Compound", s)
			}
			if len(c.Children) != tt.segments {
				t.Fatalf("children = %d, want %d", len(c.Children), tt.segments)
			}
			for i, ch := range c.Children {
				if ch.Shape.Kind() != KindConvexHull {
					t.Errorf("child %d kind = %v", i, ch.Shape.Kind())
				}
				if ch.Transform.Origin != (mgl64.Vec3{}) {
					t.Errorf("child %d origin = %v, want zero", i, ch.Transform.Origin)
				}
				if got := len(ch.Shape.(*ConvexHull).poly.Faces); got != 6 {
					t.Errorf("child %d faces = %d, want 6", i, got)
				}
			}
		})
	}
}

func TestDecomposeIsIdempotent(t *testing.T) {
	m := ringMesh(t, 24)
	desc := ShapeDesc{Kind: DescDecompose, Mesh: m}

	first, err := BuildShape(desc)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := BuildShape(desc)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	n1 := len(first.(*Compound).Children)
	n2 := len(second.(*Compound).Children)
	if n1 != n2 {
		t.Errorf("child counts differ: %d vs %d", n1, n2)
	}
}

func TestDecomposeEmptyFallsBackToBoundsBox(t *testing.T) {
	// Every group is flat, so no hull survives.
	flat := &mesh.Mesh{
		Vertices: []mesh.Vertex{
			{Position: mgl64.Vec3{-1, 0, -2}},
			{Position: mgl64.Vec3{1, 0, -2}},
			{Position: mgl64.Vec3{1, 0, 2}},
			{Position: mgl64.Vec3{-1, 0, 2}},
		},
		Groups: [][]uint32{{0, 1, 2, 3}},
		Bounds: mesh.Bounds{Min: mgl64.Vec3{-1, 0, -2}, Max: mgl64.Vec3{1, 0, 2}},
	}

	s, err := BuildShape(ShapeDesc{Kind: DescDecompose, Mesh: flat})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	box, ok := s.(*Box)
	if !ok {
		t.Fatalf("shape = %T, want *Box", s)
	}
	if !near(box.HalfExtents[0], 1, 1e-12) || !near(box.HalfExtents[2], 2, 1e-12) || box.HalfExtents[1] <= 0 {
		t.Errorf("half extents = %v", box.HalfExtents)
	}
}

func TestDecomposeWithoutMeshUsesHalfExtents(t *testing.T) {
	s, err := BuildShape(ShapeDesc{Kind: DescDecompose, HalfExtents: mgl64.Vec3{1, 2, 3}})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	if got := s.(*Box).HalfExtents; got != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("half extents = %v", got)
	}
}

func TestBuildHullReducesLargeClouds(t *testing.T) {
	m := ringMesh(t, 64)
	s, err := BuildShape(ShapeDesc{Kind: DescHull, Mesh: m})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	hull, ok := s.(*ConvexHull)
	if !ok {
		t.Fatalf("shape = %T, want *ConvexHull", s)
	}
	if n := len(hull.Points()); n < 4 || n > maxHullPoints {
		t.Errorf("hull points = %d", n)
	}
}

func TestBuildCompoundChildren(t *testing.T) {
	desc := ShapeDesc{
		Kind:   DescCompound,
		Margin: 0.03,
		Children: []ShapeDesc{
			{Kind: DescBox, HalfExtents: mgl64.Vec3{1, 0.1, 1}},
			{Kind: DescSphere, Radius: 0.2, Offset: mgl64.Vec3{0, 1, 0}},
			{Kind: DescCompound, Offset: mgl64.Vec3{2, 0, 0}, Children: []ShapeDesc{
				{Kind: DescCylinder, Radius: 0.1, Height: 1},
			}},
		},
	}
	s, err := BuildShape(desc)
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	c := s.(*Compound)
	if len(c.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(c.Children))
	}

	wantOrigins := []mgl64.Vec3{{}, {0, 1, 0}, {2, 0, 0}}
	for i, ch := range c.Children {
		if ch.Transform.Origin != wantOrigins[i] {
			t.Errorf("child %d origin = %v, want %v", i, ch.Transform.Origin, wantOrigins[i])
		}
		if ch.Shape.Margin() != 0.03 {
			t.Errorf("child %d margin = %g, want 0.03", i, ch.Shape.Margin())
		}
	}

	leaves := flatten(c)
	if len(leaves) != 3 {
		t.Fatalf("leaves = %d, want 3", len(leaves))
	}
	if leaves[2].local.Origin != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("nested leaf origin = %v", leaves[2].local.Origin)
	}
}

func TestBuildCompoundWithoutChildren(t *testing.T) {
	s, err := BuildShape(ShapeDesc{Kind: DescCompound})
	if err != nil {
		t.Fatalf("BuildShape: %v", err)
	}
	if s.Kind() != KindBox {
		t.Errorf("kind = %v, want box", s.Kind())
	}
}
