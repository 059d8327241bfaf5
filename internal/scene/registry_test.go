package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/pucktable/internal/physics"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Add(Object{Name: "a"}, physics.Translation(mgl64.Vec3{1, 0, 0}), Entry{})
	b := r.Add(Object{Name: "b"}, physics.IdentityTransform(), Entry{Flags: FlagDriven})

	if a == b {
		t.Fatalf("ids collide: %d", a)
	}
	if got := r.IDs(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("ids = %v, want [%d %d]", got, a, b)
	}
	if id, ok := r.Lookup("b"); !ok || id != b {
		t.Errorf("Lookup(b) = %d, %v", id, ok)
	}
	if obj, _ := r.Object(a); obj.ID != a {
		t.Errorf("object id = %d, want %d", obj.ID, a)
	}
	if tr, _ := r.Transform(a); tr.Origin != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("transform = %v", tr.Origin)
	}

	if e, _ := r.Entry(b); !e.Driven() {
		t.Error("b should start driven")
	}
	if err := r.SetDriven(b, false); err != nil {
		t.Fatalf("SetDriven: %v", err)
	}
	if e, _ := r.Entry(b); e.Driven() {
		t.Error("b still driven")
	}

	if _, err := r.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
	if _, ok := r.Transform(a); ok {
		t.Error("removed object still has a transform")
	}

	tests := []struct {
		name string
		err  error
	}{
		{"remove", func() error { _, err := r.Remove(a); return err }()},
		{"set driven", r.SetDriven(a, true)},
		{"set transform", r.SetTransform(a, physics.IdentityTransform())},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrUnknownObject) {
			t.Errorf("%s: err = %v, want ErrUnknownObject", tt.name, tt.err)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ffffff", Color{1, 1, 1}, true},
		{"#000000", Color{}, true},
		{"ff0000", Color{1, 0, 0}, true},
		{"#12345", Color{}, false},
		{"#gggggg", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, ok want %v", err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("color = %+v, want %+v", got, tt.want)
			}
		})
	}

	for _, hex := range []string{"#3880ff", "#eb445a", "#a0afa4"} {
		if got := MustColor(hex).Hex(); got != hex {
			t.Errorf("round trip %s = %s", hex, got)
		}
	}
}
