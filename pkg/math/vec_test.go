package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		in   Vec3
		want float32
	}{
		{Vec3{3, 4, 0}, 1},
		{Vec3{0, 0, -7}, 1},
		{Vec3{}, 0},
	}
	for _, tt := range tests {
		l := tt.in.Normalize().Length()
		if l < tt.want-0.001 || l > tt.want+0.001 {
			t.Errorf("Normalize(%v).Length() = %v, want %v", tt.in, l, tt.want)
		}
	}
}

func TestVec3From64(t *testing.T) {
	got := Vec3From64([3]float64{-3, 0.25, 140})
	want := Vec3{-3, 0.25, 140}
	if got != want {
		t.Errorf("Vec3From64() = %v, want %v", got, want)
	}
	if got.Array() != [3]float32{-3, 0.25, 140} {
		t.Errorf("Array() = %v", got.Array())
	}
}
