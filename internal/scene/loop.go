package scene

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/physics"
)

var (
	ErrNoSurface  = errors.New("no render surface")
	ErrNoClock    = errors.New("no frame clock")
	ErrNotRunning = errors.New("loop not running")
	ErrStopped    = errors.New("loop stopped")
	ErrRunning    = errors.New("loop already started")
)

// State is the lifecycle state of a Loop.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LoopConfig tunes stepping.
type LoopConfig struct {
	// MaxSubsteps bounds the fixed physics steps per tick. Zero steps the
	// world once with the raw delta.
	MaxSubsteps int
	// MaxDelta clamps large deltas, e.g. after a pause. Zero disables it.
	MaxDelta float64
}

// Loop steps the world, copies body transforms into the registry and renders
// a frame, in that order, once per Tick. It must be driven from a single
// goroutine.
type Loop struct {
	world    *physics.World
	registry *Registry
	cfg      LoopConfig
	log      *zap.Logger

	state   State
	surface RenderSurface
	clock   Clock
	view    View

	seq  uint64
	time float64
}

// NewLoop creates an idle loop over world and registry.
func NewLoop(world *physics.World, registry *Registry, cfg LoopConfig) *Loop {
	return &Loop{
		world:    world,
		registry: registry,
		cfg:      cfg,
		log:      logger.Named("loop"),
	}
}

// State returns the lifecycle state.
func (l *Loop) State() State { return l.state }

// SetView changes the camera used for following frames.
func (l *Loop) SetView(v View) { l.view = v }

// Time returns the simulated time consumed so far.
func (l *Loop) Time() float64 { return l.time }

// Start moves the loop from Idle to Running. A missing surface or clock
// leaves it Idle.
func (l *Loop) Start(surface RenderSurface, clock Clock) error {
	switch l.state {
	case Running:
		return ErrRunning
	case Stopped:
		return ErrStopped
	}
	if surface == nil {
		return ErrNoSurface
	}
	if clock == nil {
		return ErrNoClock
	}
	l.surface = surface
	l.clock = clock
	l.state = Running
	l.log.Info("loop running",
		zap.Int("objects", l.registry.Len()),
		zap.Int("max_substeps", l.cfg.MaxSubsteps),
	)
	return nil
}

// Stop halts the loop. Later ticks return ErrStopped.
func (l *Loop) Stop() {
	if l.state == Stopped {
		return
	}
	l.state = Stopped
	l.log.Info("loop stopped", zap.Uint64("frames", l.seq), zap.Float64("sim_time", l.time))
}

// Tick runs one step, sync and render cycle.
func (l *Loop) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch l.state {
	case Idle:
		return ErrNotRunning
	case Stopped:
		return ErrStopped
	}

	delta := l.clock.Delta()
	if delta < 0 || math.IsNaN(delta) {
		delta = 0
	}
	if l.cfg.MaxDelta > 0 && delta > l.cfg.MaxDelta {
		delta = l.cfg.MaxDelta
	}

	steps := l.world.Step(delta, l.cfg.MaxSubsteps)
	l.time += delta
	l.registry.sync()

	l.seq++
	frame := l.snapshot(delta, steps)
	if err := l.surface.Render(frame); err != nil {
		return fmt.Errorf("render frame %d: %w", frame.Seq, err)
	}
	return nil
}

// Run ticks every interval until ctx is done or a tick fails. The returned
// error is nil when ctx ends the run.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
	}
}

func (l *Loop) snapshot(delta float64, steps int) Frame {
	f := Frame{
		Seq:      l.seq,
		Time:     l.time,
		Delta:    delta,
		Substeps: steps,
		Contacts: l.world.ContactCount(),
		View:     l.view,
		Objects:  make([]ObjectState, 0, l.registry.Len()),
	}
	for _, id := range l.registry.order {
		obj := l.registry.objects[id]
		tr := l.registry.transforms[id]
		f.Objects = append(f.Objects, ObjectState{
			ID:       id,
			Name:     obj.Name,
			Kind:     obj.Kind,
			Color:    obj.Color.Hex(),
			Position: tr.Origin,
			Rotation: tr.Basis,
			Driven:   l.registry.entries[id].Driven(),
		})
	}
	return f
}
