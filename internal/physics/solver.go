package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// restitutionThreshold is the approach speed below which contacts do not
// bounce.
const restitutionThreshold = 1.0

// solve runs the sequential impulse solver over all manifolds.
func (w *World) solve(dt float64) {
	if len(w.manifolds) == 0 {
		return
	}
	for _, m := range w.manifolds {
		w.prepare(m, dt)
	}
	for _, m := range w.manifolds {
		warmStart(m)
	}
	for it := 0; it < w.cfg.SolverIterations; it++ {
		for _, m := range w.manifolds {
			solveFriction(m)
			solveRolling(m)
			solveNormal(m)
		}
	}
}

func effectiveMass(a, b *RigidBody, rA, rB, dir mgl64.Vec3) float64 {
	k := a.invMass + b.invMass
	ra := rA.Cross(dir)
	rb := rB.Cross(dir)
	k += ra.Dot(a.invInertiaWorld.Mul3x1(ra))
	k += rb.Dot(b.invInertiaWorld.Mul3x1(rb))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func relativeVelocity(m *manifold, c *contact) mgl64.Vec3 {
	return m.a.velocityAt(c.rA).Sub(m.b.velocityAt(c.rB))
}

func (w *World) prepare(m *manifold, dt float64) {
	a, b := m.a, m.b
	for i := range m.contacts {
		c := &m.contacts[i]
		c.rA = c.pointA.Sub(a.transform.Origin)
		c.rB = c.pointB.Sub(b.transform.Origin)
		c.t1, c.t2 = planeSpace(c.normal)
		c.normalMass = effectiveMass(a, b, c.rA, c.rB, c.normal)
		c.tangentMass1 = effectiveMass(a, b, c.rA, c.rB, c.t1)
		c.tangentMass2 = effectiveMass(a, b, c.rA, c.rB, c.t2)

		switch {
		case c.sep > 0:
			// Speculative: allow closing the gap within this step.
			c.target = -c.sep / dt
		case c.sep < -w.cfg.LinearSlop:
			c.target = -w.cfg.Baumgarte / dt * (c.sep + w.cfg.LinearSlop)
		default:
			c.target = 0
		}

		if m.restitution > 0 {
			vn := relativeVelocity(m, c).Dot(c.normal)
			if vn < -restitutionThreshold {
				c.target = math.Max(c.target, -m.restitution*vn)
			}
		}
	}

	if len(m.contacts) > 0 && m.rollingFriction > 0 {
		n := m.contacts[0].normal
		t1, t2 := planeSpace(n)
		m.rollingAxes = [3]mgl64.Vec3{n, t1, t2}
		for k, axis := range m.rollingAxes {
			kk := axis.Dot(a.invInertiaWorld.Mul3x1(axis)) + axis.Dot(b.invInertiaWorld.Mul3x1(axis))
			m.rollingMass[k] = 0
			if kk > 0 {
				m.rollingMass[k] = 1 / kk
			}
		}
	}
}

func warmStart(m *manifold) {
	for i := range m.contacts {
		c := &m.contacts[i]
		j := c.normal.Mul(c.normalImpulse).
			Add(c.t1.Mul(c.tangentImpulse1)).
			Add(c.t2.Mul(c.tangentImpulse2))
		m.a.applyImpulse(j, c.rA)
		m.b.applyImpulse(j.Mul(-1), c.rB)
	}
	if m.rollingFriction > 0 {
		for k, axis := range m.rollingAxes {
			t := axis.Mul(m.rollingImpulse[k])
			m.a.applyTorqueImpulse(t)
			m.b.applyTorqueImpulse(t.Mul(-1))
		}
	}
}

func solveNormal(m *manifold) {
	for i := range m.contacts {
		c := &m.contacts[i]
		vn := relativeVelocity(m, c).Dot(c.normal)
		lambda := c.normalMass * (c.target - vn)
		old := c.normalImpulse
		c.normalImpulse = math.Max(old+lambda, 0)
		lambda = c.normalImpulse - old

		j := c.normal.Mul(lambda)
		m.a.applyImpulse(j, c.rA)
		m.b.applyImpulse(j.Mul(-1), c.rB)
	}
}

func solveFriction(m *manifold) {
	for i := range m.contacts {
		c := &m.contacts[i]
		limit := m.friction * c.normalImpulse

		vt := relativeVelocity(m, c)
		c.tangentImpulse1 = applyFriction(m, c, c.t1, c.tangentMass1, vt.Dot(c.t1), c.tangentImpulse1, limit)

		vt = relativeVelocity(m, c)
		c.tangentImpulse2 = applyFriction(m, c, c.t2, c.tangentMass2, vt.Dot(c.t2), c.tangentImpulse2, limit)
	}
}

func applyFriction(m *manifold, c *contact, dir mgl64.Vec3, mass, v, acc, limit float64) float64 {
	lambda := -mass * v
	next := math.Max(-limit, math.Min(limit, acc+lambda))
	lambda = next - acc

	j := dir.Mul(lambda)
	m.a.applyImpulse(j, c.rA)
	m.b.applyImpulse(j.Mul(-1), c.rB)
	return next
}

// solveRolling resists relative spin with a torque bounded by the rolling
// coefficient times the manifold's normal load.
func solveRolling(m *manifold) {
	if m.rollingFriction <= 0 || len(m.contacts) == 0 {
		return
	}
	var load float64
	for _, c := range m.contacts {
		load += c.normalImpulse
	}
	limit := math.Min(m.rollingFriction*load, m.rollingFriction)

	for k, axis := range m.rollingAxes {
		rel := m.a.angVel.Sub(m.b.angVel).Dot(axis)
		lambda := -m.rollingMass[k] * rel
		acc := m.rollingImpulse[k]
		next := math.Max(-limit, math.Min(limit, acc+lambda))
		lambda = next - acc
		m.rollingImpulse[k] = next

		t := axis.Mul(lambda)
		m.a.applyTorqueImpulse(t)
		m.b.applyTorqueImpulse(t.Mul(-1))
	}
}
