package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/physics"
)

func newComposer() (*Composer, *physics.World, *Registry) {
	w := physics.NewWorld(physics.DefaultWorldConfig())
	r := NewRegistry()
	return NewComposer(w, r), w, r
}

func TestNewDefaultScene(t *testing.T) {
	s, err := New(config.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := s.Registry.Len(), 1+len(config.DefaultObjects()); got != want {
		t.Errorf("objects = %d, want %d", got, want)
	}
	if len(s.World.Bodies()) != s.Registry.Len() {
		t.Errorf("bodies %d != objects %d", len(s.World.Bodies()), s.Registry.Len())
	}

	id, ok := s.Registry.Lookup("blue-ring")
	if !ok {
		t.Fatal("blue-ring missing")
	}
	obj, _ := s.Registry.Object(id)
	if obj.Mesh.FaceCount() != 8*32 {
		t.Errorf("blue ring faces = %d", obj.Mesh.FaceCount())
	}
	if obj.Color.Hex() != "#3880ff" {
		t.Errorf("blue ring color = %s", obj.Color.Hex())
	}
	e, _ := s.Registry.Entry(id)
	if e.Body.Mass() != 49 || e.Body.Shape().Kind() != physics.KindCompound {
		t.Errorf("blue ring body mass %g shape %v", e.Body.Mass(), e.Body.Shape().Kind())
	}
	if e.Body.ActivationState() != physics.DisableDeactivation {
		t.Errorf("dynamic body state = %v", e.Body.ActivationState())
	}

	tid, _ := s.Registry.Lookup("table")
	te, _ := s.Registry.Entry(tid)
	if !te.Body.IsStatic() || te.Body.Friction() != 4 || te.Body.RollingFriction() != 10 {
		t.Errorf("table body static=%v friction=%g rolling=%g",
			te.Body.IsStatic(), te.Body.Friction(), te.Body.RollingFriction())
	}
	if te.Body.Shape().Margin() != 0.05 {
		t.Errorf("table margin = %g", te.Body.Shape().Margin())
	}
}

func TestSpawnNameMarksDriven(t *testing.T) {
	c, _, r := newComposer()
	tests := []struct {
		name   string
		driven bool
		want   bool
	}{
		{"ball", false, false},
		{"pinza", false, true},
		{"left-Pinza-tip", false, true},
		{"held", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := c.Spawn(tt.name, NewSphereFactory(0.1, Color{}, 1), physics.IdentityTransform(), tt.driven)
			if err != nil {
				t.Fatalf("Spawn: %v", err)
			}
			if e, _ := r.Entry(id); e.Driven() != tt.want {
				t.Errorf("driven = %v, want %v", e.Driven(), tt.want)
			}
		})
	}
}

func TestSpawnErrors(t *testing.T) {
	c, w, r := newComposer()

	bad := NewPuckFactory(mesh.RingParams{OuterRadius: 0.1, InnerRadius: 0.2, Height: 1, Segments: 8}, Color{}, 1)
	if _, err := c.Spawn("bad", bad, physics.IdentityTransform(), false); !errors.Is(err, mesh.ErrInvalidRing) {
		t.Errorf("err = %v, want ErrInvalidRing", err)
	}

	neg := NewSphereFactory(0.2, Color{}, -1)
	if _, err := c.Spawn("neg", neg, physics.IdentityTransform(), false); !errors.Is(err, physics.ErrNegativeMass) {
		t.Errorf("err = %v, want ErrNegativeMass", err)
	}

	if r.Len() != 0 || len(w.Bodies()) != 0 {
		t.Errorf("failed spawns left %d objects, %d bodies", r.Len(), len(w.Bodies()))
	}

	if _, err := FactoryFor(config.ObjectConfig{Name: "x", Shape: "torus"}); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestFactoryReuse(t *testing.T) {
	c, _, r := newComposer()
	f := NewPuckFactory(mesh.RingParams{OuterRadius: 0.25, InnerRadius: 0.2, Height: 0.5, Segments: 32}, MustColor("#3880ff"), 49)

	first, err := c.Spawn("first", f, physics.Translation(mgl64.Vec3{-3, 1, 0}), false)
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	f.Paint = MustColor("#eb445a")
	f.Params.Height = 0.3
	f.Params.OuterRadius = 0.275
	f.Params.InnerRadius = 0.125
	f.SetSegments(1000)
	second, err := c.Spawn("second", f, physics.Translation(mgl64.Vec3{0, 1, 0}), false)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	a, _ := r.Object(first)
	b, _ := r.Object(second)
	if a.Mesh == b.Mesh {
		t.Fatal("spawns share a mesh")
	}
	if a.Color == b.Color {
		t.Error("color change not applied")
	}
	if b.Mesh.FaceCount() != 8*mesh.MaxSegments {
		t.Errorf("second faces = %d, want %d", b.Mesh.FaceCount(), 8*mesh.MaxSegments)
	}
	if h := a.Mesh.Bounds.Size().Y(); h < 0.5-1e-9 || h > 0.5+1e-9 {
		t.Errorf("first mesh height changed to %g", h)
	}
}

func TestFactoryFor(t *testing.T) {
	friction := 0.9
	tests := []struct {
		name  string
		obj   config.ObjectConfig
		kind  physics.Kind
		check func(*testing.T, Body)
	}{
		{
			name: "ring hull",
			obj: config.ObjectConfig{Shape: config.ShapeRing, OuterRadius: 0.3, InnerRadius: 0.1,
				Height: 0.2, Segments: 16, Collision: "convexMesh", Mass: 1},
			kind: physics.KindConvexHull,
		},
		{
			name: "ring cylinder extrude",
			obj: config.ObjectConfig{Shape: config.ShapeRing, OuterRadius: 0.3, InnerRadius: 0.1,
				Height: 0.2, Segments: 16, Strategy: "extrude", Collision: "cylinder", Mass: 1},
			kind: physics.KindCylinder,
		},
		{
			name: "sphere friction",
			obj:  config.ObjectConfig{Shape: config.ShapeSphere, Radius: 0.2, Mass: 1, Friction: &friction},
			kind: physics.KindSphere,
			check: func(t *testing.T, b Body) {
				if b.Options.Friction != 0.9 {
					t.Errorf("friction = %g", b.Options.Friction)
				}
				if b.Shape.Margin() != 0.05 {
					t.Errorf("margin = %g", b.Shape.Margin())
				}
			},
		},
		{
			name: "box",
			obj:  config.ObjectConfig{Shape: config.ShapeBox, Size: config.Vec3{1, 2, 3}, Mass: 1},
			kind: physics.KindBox,
			check: func(t *testing.T, b Body) {
				if got := b.Shape.(*physics.Box).HalfExtents; got != (mgl64.Vec3{0.5, 1, 1.5}) {
					t.Errorf("half extents = %v", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FactoryFor(tt.obj)
			if err != nil {
				t.Fatalf("FactoryFor: %v", err)
			}
			m, err := f.Model()
			if err != nil {
				t.Fatalf("Model: %v", err)
			}
			b, err := f.Physics(m)
			if err != nil {
				t.Fatalf("Physics: %v", err)
			}
			if b.Shape.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", b.Shape.Kind(), tt.kind)
			}
			if tt.check != nil {
				tt.check(t, b)
			}
		})
	}
}

func TestComposerRemove(t *testing.T) {
	c, w, r := newComposer()
	id, err := c.Spawn("ball", NewSphereFactory(0.2, Color{}, 1), physics.IdentityTransform(), false)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := c.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Len() != 0 || len(w.Bodies()) != 0 {
		t.Errorf("remove left %d objects, %d bodies", r.Len(), len(w.Bodies()))
	}
	if err := c.Remove(id); !errors.Is(err, ErrUnknownObject) {
		t.Errorf("second remove err = %v", err)
	}
}
