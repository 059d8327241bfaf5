package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

// signedVolume sums tetrahedra against the origin; positive for outward winding.
func signedVolume(m *Mesh) float64 {
	var vol float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]].Position
		b := m.Vertices[f[1]].Position
		c := m.Vertices[f[2]].Position
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}

func TestBuildRingFaceCount(t *testing.T) {
	tests := []struct {
		name     string
		outer    float64
		inner    float64
		height   float64
		segments int
	}{
		{"blue puck", 0.25, 0.2, 0.5, 32},
		{"red puck", 0.275, 0.125, 0.3, 32},
		{"minimum segments", 1, 0.5, 1, 4},
		{"odd segments", 2, 1.9, 0.1, 7},
		{"maximum segments", 0.3, 0.1, 0.2, 256},
	}

	for _, tt := range tests {
		for _, strategy := range []Strategy{StrategySegments, StrategyExtrude} {
			t.Run(tt.name+"/"+strategy.String(), func(t *testing.T) {
				m, err := BuildRing(RingParams{
					OuterRadius: tt.outer,
					InnerRadius: tt.inner,
					Height:      tt.height,
					Segments:    tt.segments,
					Strategy:    strategy,
				})
				if err != nil {
					t.Fatalf("BuildRing: %v", err)
				}
				if got, want := m.FaceCount(), 8*tt.segments; got != want {
					t.Errorf("face count = %d, want %d", got, want)
				}
				if len(m.Groups) != tt.segments {
					t.Errorf("groups = %d, want %d", len(m.Groups), tt.segments)
				}

				for i, v := range m.Vertices {
					r := HorizontalRadius(v.Position)
					if r < tt.inner-eps || r > tt.outer+eps {
						t.Fatalf("vertex %d radius %f outside [%f, %f]", i, r, tt.inner, tt.outer)
					}
					if math.Abs(math.Abs(v.Position.Y())-tt.height/2) > eps {
						t.Fatalf("vertex %d height %f, want +-%f", i, v.Position.Y(), tt.height/2)
					}
				}
			})
		}
	}
}

func TestBuildRingClampsSegments(t *testing.T) {
	tests := []struct {
		requested int
		effective int
	}{
		{2, 4},
		{-5, 4},
		{1000, 256},
	}

	for _, tt := range tests {
		got, err := BuildRing(RingParams{OuterRadius: 0.25, InnerRadius: 0.2, Height: 0.5, Segments: tt.requested})
		if err != nil {
			t.Fatalf("BuildRing(%d): %v", tt.requested, err)
		}
		want, err := BuildRing(RingParams{OuterRadius: 0.25, InnerRadius: 0.2, Height: 0.5, Segments: tt.effective})
		if err != nil {
			t.Fatalf("BuildRing(%d): %v", tt.effective, err)
		}

		if got.FaceCount() != want.FaceCount() || len(got.Vertices) != len(want.Vertices) {
			t.Fatalf("segments %d: %d faces/%d vertices, want %d/%d",
				tt.requested, got.FaceCount(), len(got.Vertices), want.FaceCount(), len(want.Vertices))
		}
		for i := range got.Vertices {
			if got.Vertices[i] != want.Vertices[i] {
				t.Fatalf("segments %d: vertex %d differs: %v vs %v", tt.requested, i, got.Vertices[i], want.Vertices[i])
			}
		}
		for i := range got.Faces {
			if got.Faces[i] != want.Faces[i] {
				t.Fatalf("segments %d: face %d differs", tt.requested, i)
			}
		}
	}
}

func TestBuildRingInvalid(t *testing.T) {
	tests := []struct {
		name string
		p    RingParams
	}{
		{"inner equals outer", RingParams{OuterRadius: 1, InnerRadius: 1, Height: 1, Segments: 8}},
		{"inner above outer", RingParams{OuterRadius: 1, InnerRadius: 2, Height: 1, Segments: 8}},
		{"zero inner", RingParams{OuterRadius: 1, InnerRadius: 0, Height: 1, Segments: 8}},
		{"negative outer", RingParams{OuterRadius: -1, InnerRadius: 0.5, Height: 1, Segments: 8}},
		{"zero height", RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: 0, Segments: 8}},
		{"nan outer", RingParams{OuterRadius: math.NaN(), InnerRadius: 0.5, Height: 1, Segments: 8}},
		{"inf outer", RingParams{OuterRadius: math.Inf(1), InnerRadius: 0.5, Height: 1, Segments: 8}},
		{"nan inner", RingParams{OuterRadius: 1, InnerRadius: math.NaN(), Height: 1, Segments: 8}},
		{"nan height", RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: math.NaN(), Segments: 8}},
		{"inf height", RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: math.Inf(1), Segments: 8}},
		{"negative inf inner", RingParams{OuterRadius: 1, InnerRadius: math.Inf(-1), Height: 1, Segments: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildRing(tt.p)
			if !errors.Is(err, ErrInvalidRing) {
				t.Fatalf("error = %v, want ErrInvalidRing", err)
			}
			if m != nil {
				t.Error("expected nil mesh on error")
			}
		})
	}
}

func TestBuildRingWindingOutward(t *testing.T) {
	const outer, inner, height = 0.25, 0.2, 0.5
	for _, strategy := range []Strategy{StrategySegments, StrategyExtrude} {
		m, err := BuildRing(RingParams{OuterRadius: outer, InnerRadius: inner, Height: height, Segments: 32, Strategy: strategy})
		if err != nil {
			t.Fatal(err)
		}

		want := math.Pi * (outer*outer - inner*inner) * height
		got := signedVolume(m)
		if got <= 0 {
			t.Fatalf("%s: signed volume %f, faces wound inward", strategy, got)
		}
		if math.Abs(got-want)/want > 0.01 {
			t.Errorf("%s: volume %f, want about %f", strategy, got, want)
		}
	}
}

func TestBuildRingTopFacesPointUp(t *testing.T) {
	m, err := BuildRing(RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: 1, Segments: 8})
	if err != nil {
		t.Fatal(err)
	}

	for i, f := range m.Faces {
		n, ok := faceNormal(m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position)
		if !ok {
			t.Fatalf("face %d degenerate", i)
		}
		switch i % 8 {
		case 0, 1:
			if n.Y() < 0.99 {
				t.Errorf("top face %d normal %v", i, n)
			}
		case 2, 3:
			if n.Y() > -0.99 {
				t.Errorf("bottom face %d normal %v", i, n)
			}
		case 4, 5:
			center := m.Vertices[f[0]].Position.Add(m.Vertices[f[1]].Position).Add(m.Vertices[f[2]].Position)
			if n.Dot(mgl64.Vec3{center.X(), 0, center.Z()}) <= 0 {
				t.Errorf("outer wall face %d points inward", i)
			}
		case 6, 7:
			center := m.Vertices[f[0]].Position.Add(m.Vertices[f[1]].Position).Add(m.Vertices[f[2]].Position)
			if n.Dot(mgl64.Vec3{center.X(), 0, center.Z()}) >= 0 {
				t.Errorf("inner wall face %d points outward", i)
			}
		}
	}
}

func TestBuildRingBoundsAndNormals(t *testing.T) {
	m, err := BuildRing(RingParams{OuterRadius: 0.25, InnerRadius: 0.2, Height: 0.5, Segments: 32})
	if err != nil {
		t.Fatal(err)
	}

	if c := m.Bounds.Center(); math.Abs(c.Y()) > eps {
		t.Errorf("ring not recentred, bounds center %v", c)
	}
	if m.Bounds.Max.Y()-0.25 > eps || m.Bounds.Min.Y()+0.25 > eps {
		t.Errorf("height bounds %v..%v, want -0.25..0.25", m.Bounds.Min, m.Bounds.Max)
	}

	wantRadius := math.Sqrt(0.25*0.25 + 0.25*0.25)
	if math.Abs(m.Sphere.Radius-wantRadius) > 1e-6 {
		t.Errorf("bounding sphere radius %f, want %f", m.Sphere.Radius, wantRadius)
	}
	for i, v := range m.Vertices {
		if d := v.Position.Len(); d > m.Sphere.Radius+eps {
			t.Fatalf("vertex %d at %f outside bounding sphere", i, d)
		}
		if l := v.Normal.Len(); math.Abs(l-1) > 1e-6 {
			t.Fatalf("vertex %d normal length %f", i, l)
		}
	}
}

func TestBuildRingGroupsAreSlices(t *testing.T) {
	for _, strategy := range []Strategy{StrategySegments, StrategyExtrude} {
		m, err := BuildRing(RingParams{OuterRadius: 1, InnerRadius: 0.5, Height: 1, Segments: 16, Strategy: strategy})
		if err != nil {
			t.Fatal(err)
		}
		for i, g := range m.Groups {
			if len(g) != 8 {
				t.Fatalf("%s group %d has %d vertices", strategy, i, len(g))
			}
			seen := make(map[uint32]bool)
			for _, idx := range g {
				if seen[idx] {
					t.Fatalf("%s group %d repeats vertex %d", strategy, i, idx)
				}
				seen[idx] = true
			}
		}
		if strategy == StrategySegments {
			for i, g := range m.Groups {
				if g[0] != uint32(8*i) {
					t.Errorf("segment group %d starts at %d, want %d", i, g[0], 8*i)
				}
			}
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if ParseStrategy("extrude") != StrategyExtrude {
		t.Error("extrude not parsed")
	}
	if ParseStrategy("segments") != StrategySegments || ParseStrategy("") != StrategySegments {
		t.Error("segments should be the default")
	}
}
