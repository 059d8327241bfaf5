package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNegativeMass is returned when a body is created with mass < 0.
var ErrNegativeMass = errors.New("negative body mass")

// ActivationState controls whether a body takes part in simulation.
type ActivationState int

const (
	ActiveTag ActivationState = iota + 1
	IslandSleeping
	WantsDeactivation
	DisableDeactivation
	DisableSimulation
)

func (s ActivationState) String() string {
	switch s {
	case ActiveTag:
		return "active"
	case IslandSleeping:
		return "sleeping"
	case WantsDeactivation:
		return "wants-deactivation"
	case DisableDeactivation:
		return "always-active"
	case DisableSimulation:
		return "disabled"
	default:
		return fmt.Sprintf("ActivationState(%d)", int(s))
	}
}

// BodyOptions are the per-body material and activation settings.
type BodyOptions struct {
	Friction        float64
	RollingFriction float64
	Restitution     float64
	LinearDamping   float64
	AngularDamping  float64

	// DisableDeactivation keeps the body awake. Dynamic bodies always get it.
	DisableDeactivation bool

	// MotionState receives the body transform after each step. When nil a
	// DefaultMotionState seeded with the initial transform is used.
	MotionState MotionState

	// UserData is an opaque back-reference for the owner of the body.
	UserData any
}

// DefaultBodyOptions returns friction 0.5 and everything else zero.
func DefaultBodyOptions() BodyOptions {
	return BodyOptions{Friction: 0.5}
}

// leaf is one convex or plane piece of a body shape placed in body space.
type leaf struct {
	shape Shape
	local Transform
	index int
}

// RigidBody is a shape with mass simulated by a World.
type RigidBody struct {
	id    int
	world *World

	shape  Shape
	leaves []leaf

	transform Transform
	linVel    mgl64.Vec3
	angVel    mgl64.Vec3

	mass            float64
	invMass         float64
	invInertiaLocal mgl64.Mat3
	invInertiaWorld mgl64.Mat3

	friction        float64
	rollingFriction float64
	restitution     float64
	linearDamping   float64
	angularDamping  float64

	state         ActivationState
	sleepingTimer float64

	motionState MotionState
	userData    any
}

// NewBody creates a body for shape placed at tr. A mass of zero makes the
// body static; a negative mass is rejected.
func NewBody(shape Shape, tr Transform, mass float64, opts BodyOptions) (*RigidBody, error) {
	if shape == nil {
		return nil, fmt.Errorf("new body: %w: nil shape", ErrInvalidShape)
	}
	if mass < 0 || math.IsNaN(mass) {
		return nil, fmt.Errorf("new body: %w: %g", ErrNegativeMass, mass)
	}

	tr.Basis = tr.Basis.Normalize()
	if tr.Basis == (mgl64.Quat{}) {
		tr.Basis = mgl64.QuatIdent()
	}

	b := &RigidBody{
		id:              -1,
		shape:           shape,
		leaves:          flatten(shape),
		transform:       tr,
		mass:            mass,
		friction:        opts.Friction,
		rollingFriction: opts.RollingFriction,
		restitution:     opts.Restitution,
		linearDamping:   clamp01(opts.LinearDamping),
		angularDamping:  clamp01(opts.AngularDamping),
		state:           ActiveTag,
		motionState:     opts.MotionState,
		userData:        opts.UserData,
	}
	if b.motionState == nil {
		b.motionState = NewDefaultMotionState(tr)
	}

	if mass > 0 {
		b.invMass = 1 / mass
		b.invInertiaLocal = invertInertia(shape.inertia(mass))
		b.state = DisableDeactivation
	}
	if opts.DisableDeactivation {
		b.state = DisableDeactivation
	}
	b.updateInertia()
	return b, nil
}

// flatten expands nested compounds into leaves in body space.
func flatten(s Shape) []leaf {
	var out []leaf
	var walk func(s Shape, tr Transform)
	walk = func(s Shape, tr Transform) {
		if c, ok := s.(*Compound); ok {
			for _, ch := range c.Children {
				walk(ch.Shape, tr.Mul(ch.Transform))
			}
			return
		}
		out = append(out, leaf{shape: s, local: tr, index: len(out)})
	}
	walk(s, IdentityTransform())
	return out
}

// invertInertia inverts a local inertia tensor. Axes with no inertia get no
// angular response.
func invertInertia(in mgl64.Mat3) mgl64.Mat3 {
	if in.Det() > 1e-18 {
		return in.Inv()
	}
	var out mgl64.Mat3
	for i := 0; i < 3; i++ {
		if d := in.At(i, i); d > 0 {
			out.Set(i, i, 1/d)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (b *RigidBody) updateInertia() {
	r := b.transform.Rotation()
	b.invInertiaWorld = r.Mul3(b.invInertiaLocal).Mul3(r.Transpose())
}

// ID is the handle assigned when the body joins a world, or -1.
func (b *RigidBody) ID() int { return b.id }

func (b *RigidBody) Shape() Shape             { return b.shape }
func (b *RigidBody) Mass() float64            { return b.mass }
func (b *RigidBody) InverseMass() float64     { return b.invMass }
func (b *RigidBody) IsStatic() bool           { return b.invMass == 0 }
func (b *RigidBody) Friction() float64        { return b.friction }
func (b *RigidBody) RollingFriction() float64 { return b.rollingFriction }
func (b *RigidBody) Restitution() float64     { return b.restitution }
func (b *RigidBody) MotionState() MotionState { return b.motionState }
func (b *RigidBody) UserData() any            { return b.userData }

// Transform is the current simulated transform, without interpolation.
func (b *RigidBody) Transform() Transform { return b.transform }

// Position is the origin of the simulated transform.
func (b *RigidBody) Position() mgl64.Vec3 { return b.transform.Origin }

func (b *RigidBody) LinearVelocity() mgl64.Vec3  { return b.linVel }
func (b *RigidBody) AngularVelocity() mgl64.Vec3 { return b.angVel }

// LocalInverseInertia returns the inverse inertia tensor in body space.
func (b *RigidBody) LocalInverseInertia() mgl64.Mat3 { return b.invInertiaLocal }

// SetLinearVelocity sets the velocity of a dynamic body and wakes it.
func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linVel = v
	b.Activate()
}

// SetAngularVelocity sets the spin of a dynamic body and wakes it.
func (b *RigidBody) SetAngularVelocity(w mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.angVel = w
	b.Activate()
}

// ApplyCentralImpulse changes the linear momentum of a dynamic body.
func (b *RigidBody) ApplyCentralImpulse(j mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linVel = b.linVel.Add(j.Mul(b.invMass))
	b.Activate()
}

// SetFriction changes the friction coefficient.
func (b *RigidBody) SetFriction(f float64) { b.friction = f }

// SetRollingFriction changes the rolling friction coefficient.
func (b *RigidBody) SetRollingFriction(f float64) { b.rollingFriction = f }

// SetRestitution changes the restitution coefficient.
func (b *RigidBody) SetRestitution(e float64) { b.restitution = e }

// ActivationState returns the current activation state.
func (b *RigidBody) ActivationState() ActivationState { return b.state }

// SetActivationState changes the state unless deactivation or simulation
// has been disabled.
func (b *RigidBody) SetActivationState(s ActivationState) {
	if b.state == DisableDeactivation || b.state == DisableSimulation {
		return
	}
	b.state = s
}

// ForceActivationState changes the state unconditionally.
func (b *RigidBody) ForceActivationState(s ActivationState) {
	b.state = s
}

// Activate wakes a sleeping body.
func (b *RigidBody) Activate() {
	if b.IsStatic() {
		return
	}
	b.SetActivationState(ActiveTag)
	b.sleepingTimer = 0
}

// IsActive reports whether the body is integrated by the world.
func (b *RigidBody) IsActive() bool {
	return b.state != IslandSleeping && b.state != DisableSimulation
}

func (b *RigidBody) simulated() bool {
	return !b.IsStatic() && b.IsActive()
}

// bounds is the world box of the shape, grown by its margin.
func (b *RigidBody) bounds() AABB {
	return b.shape.bounds(b.transform).Expand(b.shape.Margin())
}

// velocityAt is the velocity of the body point at world offset r from its
// origin.
func (b *RigidBody) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(r))
}

func (b *RigidBody) applyImpulse(j, r mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.linVel = b.linVel.Add(j.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.invInertiaWorld.Mul3x1(r.Cross(j)))
}

func (b *RigidBody) applyTorqueImpulse(t mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.angVel = b.angVel.Add(b.invInertiaWorld.Mul3x1(t))
}
