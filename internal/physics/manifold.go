package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contactBreaking is the body-space distance within which a new contact
// inherits the impulses of an old one.
const contactBreaking = 0.02

// maxFriction bounds combined friction coefficients.
const maxFriction = 10.0

type manifoldKey struct {
	bodyA, bodyB int
	leafA, leafB int
}

type contact struct {
	localA mgl64.Vec3
	localB mgl64.Vec3
	pointA mgl64.Vec3
	pointB mgl64.Vec3
	normal mgl64.Vec3
	sep    float64

	normalImpulse   float64
	tangentImpulse1 float64
	tangentImpulse2 float64

	rA, rB       mgl64.Vec3
	t1, t2       mgl64.Vec3
	normalMass   float64
	tangentMass1 float64
	tangentMass2 float64
	target       float64
}

// manifold holds the contacts between one leaf of each body.
type manifold struct {
	key      manifoldKey
	a, b     *RigidBody
	contacts []contact

	friction        float64
	rollingFriction float64
	restitution     float64

	rollingAxes    [3]mgl64.Vec3
	rollingMass    [3]float64
	rollingImpulse [3]float64
}

func newManifold(key manifoldKey, a, b *RigidBody) *manifold {
	return &manifold{
		key:             key,
		a:               a,
		b:               b,
		friction:        clampFriction(a.friction * b.friction),
		rollingFriction: clampFriction(a.rollingFriction*b.friction + a.friction*b.rollingFriction),
		restitution:     a.restitution * b.restitution,
	}
}

func clampFriction(f float64) float64 {
	return math.Max(-maxFriction, math.Min(maxFriction, f))
}

// update replaces the contacts with fresh points, carrying over impulses of
// points that stayed in place.
func (m *manifold) update(points []contactPoint, warm float64) {
	fresh := make([]contact, len(points))
	for i, p := range points {
		c := contact{
			pointA: p.pointA(),
			pointB: p.pointB,
			normal: p.normal,
			sep:    p.sep,
		}
		c.localA = m.a.transform.InverseApply(c.pointA)
		c.localB = m.b.transform.InverseApply(c.pointB)

		best, bestD := -1, contactBreaking*contactBreaking
		for k, old := range m.contacts {
			if d := old.localA.Sub(c.localA).LenSqr(); d < bestD {
				best, bestD = k, d
			}
		}
		if best >= 0 {
			old := m.contacts[best]
			c.normalImpulse = old.normalImpulse * warm
			c.tangentImpulse1 = old.tangentImpulse1 * warm
			c.tangentImpulse2 = old.tangentImpulse2 * warm
		}
		fresh[i] = c
	}
	m.contacts = fresh

	for k := range m.rollingImpulse {
		m.rollingImpulse[k] *= warm
	}
}

// collide runs the narrowphase over the broadphase pairs and rebuilds the
// manifold list in pair order.
func (w *World) collide(pairs []bodyPair) {
	next := make([]*manifold, 0, len(w.manifolds))
	live := make(map[manifoldKey]*manifold, len(w.byKey))

	for _, p := range pairs {
		a, b := p.a, p.b
		threshold := a.shape.Margin() + b.shape.Margin()
		touched := false

		for _, la := range a.leaves {
			boxA := la.shape.bounds(a.transform.Mul(la.local)).Expand(threshold)
			for _, lb := range b.leaves {
				boxB := lb.shape.bounds(b.transform.Mul(lb.local))
				if !boxA.Overlaps(boxB) {
					continue
				}
				points := w.collideLeaves(a, la, b, lb, threshold)
				if len(points) == 0 {
					continue
				}
				touched = true

				key := manifoldKey{a.id, b.id, la.index, lb.index}
				m, ok := w.byKey[key]
				if !ok {
					m = newManifold(key, a, b)
				}
				m.update(points, w.cfg.WarmStarting)
				next = append(next, m)
				live[key] = m
			}
		}

		if touched {
			wake(a, b)
		}
	}

	w.manifolds = next
	w.byKey = live
}

// wake activates a sleeping body touched by an awake dynamic one.
func wake(a, b *RigidBody) {
	if !a.IsStatic() && !b.IsStatic() {
		if a.IsActive() && !b.IsActive() {
			b.Activate()
		} else if b.IsActive() && !a.IsActive() {
			a.Activate()
		}
	}
}
