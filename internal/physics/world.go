package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/logger"
)

var (
	// ErrBodyInWorld is returned when adding a body that already belongs to a world.
	ErrBodyInWorld = errors.New("body already in a world")
	// ErrBodyNotInWorld is returned when removing a body the world does not own.
	ErrBodyNotInWorld = errors.New("body not in this world")
)

// WorldConfig holds the solver and integration settings of a World.
type WorldConfig struct {
	Gravity          mgl64.Vec3
	FixedTimeStep    float64
	SolverIterations int

	// Baumgarte is the fraction of penetration removed per step.
	Baumgarte float64
	// LinearSlop is the penetration tolerated without correction.
	LinearSlop float64
	// WarmStarting scales the impulses carried over between steps.
	WarmStarting float64

	LinearSleepThreshold  float64
	AngularSleepThreshold float64
	TimeToSleep           float64
}

// DefaultWorldConfig returns gravity (0,-10,0) with a 60 Hz fixed step.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:               mgl64.Vec3{0, -10, 0},
		FixedTimeStep:         1.0 / 60.0,
		SolverIterations:      10,
		Baumgarte:             0.2,
		LinearSlop:            0.005,
		WarmStarting:          0.85,
		LinearSleepThreshold:  0.8,
		AngularSleepThreshold: 1.0,
		TimeToSleep:           2.0,
	}
}

func (c WorldConfig) withDefaults() WorldConfig {
	def := DefaultWorldConfig()
	if c.FixedTimeStep <= 0 {
		c.FixedTimeStep = def.FixedTimeStep
	}
	if c.SolverIterations <= 0 {
		c.SolverIterations = def.SolverIterations
	}
	if c.Baumgarte <= 0 {
		c.Baumgarte = def.Baumgarte
	}
	if c.LinearSlop < 0 {
		c.LinearSlop = def.LinearSlop
	}
	if c.WarmStarting < 0 || c.WarmStarting > 1 {
		c.WarmStarting = def.WarmStarting
	}
	if c.LinearSleepThreshold <= 0 {
		c.LinearSleepThreshold = def.LinearSleepThreshold
	}
	if c.AngularSleepThreshold <= 0 {
		c.AngularSleepThreshold = def.AngularSleepThreshold
	}
	if c.TimeToSleep <= 0 {
		c.TimeToSleep = def.TimeToSleep
	}
	return c
}

// Stats summarises the last internal step.
type Stats struct {
	Bodies    int
	Pairs     int
	Manifolds int
	Contacts  int
	Steps     uint64
}

// World owns a set of rigid bodies and advances them in time. It is not safe
// for concurrent use.
type World struct {
	cfg    WorldConfig
	log    *zap.Logger
	bodies []*RigidBody
	nextID int

	localTime float64
	steps     uint64

	manifolds []*manifold
	byKey     map[manifoldKey]*manifold
	pairs     int

	placed map[leafKey]*worldPolytope
}

// NewWorld creates an empty world. Zero step or iteration settings are
// replaced by their defaults.
func NewWorld(cfg WorldConfig) *World {
	cfg = cfg.withDefaults()
	w := &World{
		cfg:    cfg,
		log:    logger.Named("physics"),
		byKey:  make(map[manifoldKey]*manifold),
		placed: make(map[leafKey]*worldPolytope),
	}
	w.log.Debug("world created",
		zap.Float64("gravity_y", cfg.Gravity.Y()),
		zap.Float64("fixed_step", cfg.FixedTimeStep),
		zap.Int("iterations", cfg.SolverIterations),
	)
	return w
}

// Config returns the effective configuration.
func (w *World) Config() WorldConfig { return w.cfg }

// Gravity returns the world gravity.
func (w *World) Gravity() mgl64.Vec3 { return w.cfg.Gravity }

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*RigidBody {
	out := make([]*RigidBody, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// AddBody inserts b into the simulated set.
func (w *World) AddBody(b *RigidBody) error {
	if b == nil {
		return fmt.Errorf("add body: %w: nil body", ErrInvalidShape)
	}
	if b.world != nil {
		return fmt.Errorf("add body %d: %w", b.id, ErrBodyInWorld)
	}
	b.world = w
	b.id = w.nextID
	w.nextID++
	b.updateInertia()
	w.bodies = append(w.bodies, b)
	return nil
}

// RemoveBody takes b out of the world along with its contacts.
func (w *World) RemoveBody(b *RigidBody) error {
	if b == nil || b.world != w {
		return ErrBodyNotInWorld
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}

	kept := w.manifolds[:0]
	for _, m := range w.manifolds {
		if m.a == b || m.b == b {
			delete(w.byKey, m.key)
			continue
		}
		kept = append(kept, m)
	}
	w.manifolds = kept

	b.world = nil
	b.id = -1
	return nil
}

// Step advances the world by dt seconds in fixed sub-steps and returns how
// many were taken. At most maxSubsteps run; leftover time beyond that is
// dropped. With maxSubsteps <= 0 a single step of exactly dt is taken.
// Motion states of dynamic bodies are updated afterwards, extrapolated by the
// time not yet consumed.
func (w *World) Step(dt float64, maxSubsteps int) int {
	if !(dt > 0) || math.IsInf(dt, 1) {
		dt = 0
	}

	fixed := w.cfg.FixedTimeStep
	steps := 0
	if maxSubsteps > 0 {
		w.localTime += dt
		// Anything past one step beyond the cap is dropped anyway; capping
		// first keeps the step count in int range.
		if limit := float64(maxSubsteps+1) * fixed; w.localTime > limit {
			w.log.Debug("dropping simulation time",
				zap.Float64("seconds", w.localTime-limit),
				zap.Int("max_substeps", maxSubsteps),
			)
			w.localTime = limit
		}
		if w.localTime >= fixed {
			steps = int(w.localTime / fixed)
			w.localTime -= float64(steps) * fixed
		}
		if steps > maxSubsteps {
			steps = maxSubsteps
		}
	} else {
		fixed = dt
		w.localTime = 0
		if dt > 0 {
			steps = 1
		}
	}

	for i := 0; i < steps; i++ {
		w.internalStep(fixed)
	}
	w.synchronizeMotionStates()
	return steps
}

func (w *World) internalStep(dt float64) {
	w.steps++
	clear(w.placed)

	w.applyForces(dt)
	pairs := w.findPairs()
	w.pairs = len(pairs)
	w.collide(pairs)
	w.solve(dt)
	w.integrate(dt)
	w.updateActivation(dt)
}

func (w *World) applyForces(dt float64) {
	g := w.cfg.Gravity.Mul(dt)
	for _, b := range w.bodies {
		if !b.simulated() {
			continue
		}
		b.linVel = b.linVel.Add(g)
		b.linVel = b.linVel.Mul(math.Pow(1-b.linearDamping, dt))
		b.angVel = b.angVel.Mul(math.Pow(1-b.angularDamping, dt))
	}
}

func (w *World) integrate(dt float64) {
	maxAng := (math.Pi / 4) / dt
	for _, b := range w.bodies {
		if !b.simulated() {
			continue
		}
		if speed := b.angVel.Len(); speed > maxAng {
			b.angVel = b.angVel.Mul(maxAng / speed)
		}
		b.transform = integrateTransform(b.transform, b.linVel, b.angVel, dt)
		b.updateInertia()
	}
}

func (w *World) updateActivation(dt float64) {
	for _, b := range w.bodies {
		if b.IsStatic() || b.state == DisableSimulation || b.state == IslandSleeping {
			continue
		}
		if b.state == DisableDeactivation {
			b.sleepingTimer = 0
			continue
		}
		if b.linVel.Len() < w.cfg.LinearSleepThreshold && b.angVel.Len() < w.cfg.AngularSleepThreshold {
			b.sleepingTimer += dt
		} else {
			b.sleepingTimer = 0
			b.state = ActiveTag
		}
		if b.sleepingTimer > w.cfg.TimeToSleep {
			b.state = IslandSleeping
			b.linVel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
		}
	}
}

func (w *World) synchronizeMotionStates() {
	for _, b := range w.bodies {
		if b.IsStatic() || b.state == IslandSleeping || b.state == DisableSimulation {
			continue
		}
		tr := b.transform
		if w.localTime > 0 {
			tr = integrateTransform(tr, b.linVel, b.angVel, w.localTime)
		}
		b.motionState.SetWorldTransform(tr)
	}
}

// Stats reports counters from the most recent step.
func (w *World) Stats() Stats {
	s := Stats{
		Bodies:    len(w.bodies),
		Pairs:     w.pairs,
		Manifolds: len(w.manifolds),
		Steps:     w.steps,
	}
	for _, m := range w.manifolds {
		s.Contacts += len(m.contacts)
	}
	return s
}

// ContactCount returns the number of contact points held by the world.
func (w *World) ContactCount() int {
	return w.Stats().Contacts
}
