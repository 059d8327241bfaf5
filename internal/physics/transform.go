package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform: rotation followed by translation.
type Transform struct {
	Origin mgl64.Vec3
	Basis  mgl64.Quat
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Basis: mgl64.QuatIdent()}
}

// NewTransform builds a transform from a position and an orientation.
func NewTransform(origin mgl64.Vec3, basis mgl64.Quat) Transform {
	return Transform{Origin: origin, Basis: basis.Normalize()}
}

// Translation returns a transform with identity rotation.
func Translation(origin mgl64.Vec3) Transform {
	return Transform{Origin: origin, Basis: mgl64.QuatIdent()}
}

// Apply maps a local point into the parent frame.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Rotate(p).Add(t.Origin)
}

// ApplyVector rotates a local direction into the parent frame.
func (t Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Rotate(v)
}

// InverseApply maps a parent-frame point into the local frame.
func (t Transform) InverseApply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Basis.Conjugate().Rotate(p.Sub(t.Origin))
}

// Mul composes t with a child transform expressed in t's frame.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Origin: t.Apply(child.Origin),
		Basis:  t.Basis.Mul(child.Basis),
	}
}

// Rotation returns the rotation as a 3x3 matrix.
func (t Transform) Rotation() mgl64.Mat3 {
	return t.Basis.Mat4().Mat3()
}

// integrateTransform advances t by constant velocities over dt.
func integrateTransform(t Transform, lin, ang mgl64.Vec3, dt float64) Transform {
	out := Transform{Origin: t.Origin.Add(lin.Mul(dt)), Basis: t.Basis}
	if ang.Dot(ang) > 0 {
		spin := mgl64.Quat{W: 0, V: ang}.Mul(t.Basis)
		out.Basis = mgl64.Quat{
			W: t.Basis.W + 0.5*dt*spin.W,
			V: t.Basis.V.Add(spin.V.Mul(0.5 * dt)),
		}.Normalize()
	}
	return out
}

// planeSpace returns two unit vectors orthogonal to n and to each other.
func planeSpace(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n[2]) > 0.7071 {
		a := n[1]*n[1] + n[2]*n[2]
		k := 1 / math.Sqrt(a)
		t1 = mgl64.Vec3{0, -n[2] * k, n[1] * k}
	} else {
		a := n[0]*n[0] + n[1]*n[1]
		k := 1 / math.Sqrt(a)
		t1 = mgl64.Vec3{-n[1] * k, n[0] * k, 0}
	}
	return t1, n.Cross(t1)
}
