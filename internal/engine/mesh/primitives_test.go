package mesh

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBuildSphere(t *testing.T) {
	const r = 0.27
	m := BuildSphere(r, 32, 32)

	// Two pole rows contribute one triangle per column instead of two.
	if got, want := m.FaceCount(), 2*32*32-2*32; got != want {
		t.Errorf("face count = %d, want %d", got, want)
	}
	for i, v := range m.Vertices {
		if math.Abs(v.Position.Len()-r) > 1e-9 {
			t.Fatalf("vertex %d off the sphere: %f", i, v.Position.Len())
		}
	}
	if math.Abs(m.Sphere.Radius-r) > 1e-9 {
		t.Errorf("bounding radius %f, want %f", m.Sphere.Radius, r)
	}

	want := 4.0 / 3.0 * math.Pi * r * r * r
	if got := signedVolume(m); got <= 0 || math.Abs(got-want)/want > 0.04 {
		t.Errorf("signed volume %f, want about %f", got, want)
	}
}

func TestBuildBox(t *testing.T) {
	m := BuildBox(mgl64.Vec3{20, 2, 20})

	if m.FaceCount() != 12 {
		t.Errorf("face count = %d, want 12", m.FaceCount())
	}
	if got := signedVolume(m); math.Abs(got-800) > 1e-9 {
		t.Errorf("signed volume %f, want 800", got)
	}
	if m.Bounds.Min != (mgl64.Vec3{-10, -1, -10}) || m.Bounds.Max != (mgl64.Vec3{10, 1, 10}) {
		t.Errorf("bounds %v..%v", m.Bounds.Min, m.Bounds.Max)
	}
	for i, f := range m.Faces {
		n, _ := faceNormal(m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position)
		if n.Sub(m.Vertices[f[0]].Normal).Len() > 1e-9 {
			t.Errorf("face %d winding normal %v disagrees with vertex normal %v", i, n, m.Vertices[f[0]].Normal)
		}
	}
}

func TestWriteOBJ(t *testing.T) {
	m, err := BuildRing(RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: 1, Segments: 4})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, "ring", m); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	var verts, normals, faces int
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			verts++
		case strings.HasPrefix(line, "vn "):
			normals++
		case strings.HasPrefix(line, "f "):
			faces++
		}
	}
	if verts != len(m.Vertices) || normals != len(m.Vertices) || faces != m.FaceCount() {
		t.Errorf("obj has %d v, %d vn, %d f; want %d, %d, %d", verts, normals, faces, len(m.Vertices), len(m.Vertices), m.FaceCount())
	}
	if !strings.HasPrefix(buf.String(), "o ring\n") {
		t.Error("missing object name")
	}
}
