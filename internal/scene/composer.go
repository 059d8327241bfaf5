package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/physics"
)

// drivenMarker in an object name flags it as externally driven.
const drivenMarker = "pinza"

// Composer spawns objects into a world and a registry.
type Composer struct {
	world    *physics.World
	registry *Registry
	log      *zap.Logger
}

// NewComposer returns a composer adding to world and registry.
func NewComposer(world *physics.World, registry *Registry) *Composer {
	return &Composer{world: world, registry: registry, log: logger.Named("scene")}
}

// Spawn builds an object from f at tr and registers it with the world and
// the registry.
func (c *Composer) Spawn(name string, f Factory, tr physics.Transform, driven bool) (ObjectID, error) {
	m, err := f.Model()
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}
	phys, err := f.Physics(m)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}
	body, err := physics.NewBody(phys.Shape, tr, phys.Mass, phys.Options)
	if err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}
	if err := c.world.AddBody(body); err != nil {
		return 0, fmt.Errorf("spawn %s: %w", name, err)
	}

	var flags Flags
	if driven || strings.Contains(strings.ToLower(name), drivenMarker) {
		flags |= FlagDriven
	}
	id := c.registry.Add(
		Object{Name: name, Kind: f.Kind(), Mesh: m, Color: f.Color()},
		tr,
		Entry{Body: body, Source: f, Flags: flags},
	)

	c.log.Debug("spawned",
		zap.String("name", name),
		zap.String("kind", f.Kind()),
		zap.Int("object", int(id)),
		zap.Int("body", body.ID()),
		zap.String("shape", phys.Shape.Kind().String()),
		zap.Float64("mass", phys.Mass),
		zap.Int("faces", m.FaceCount()),
		zap.Bool("driven", flags&FlagDriven != 0),
	)
	return id, nil
}

// Remove takes an object out of the registry and its body out of the world.
func (c *Composer) Remove(id ObjectID) error {
	e, err := c.registry.Remove(id)
	if err != nil {
		return err
	}
	if e.Body != nil {
		return c.world.RemoveBody(e.Body)
	}
	return nil
}

// AddTable spawns the static table so that its top face sits at TopY.
func (c *Composer) AddTable(t config.TableConfig) (ObjectID, error) {
	f := NewTableFactory()
	f.Size = toVec(t.Size)
	f.Margin = t.Margin
	f.Material.Friction = t.Friction
	f.Material.RollingFriction = t.RollingFriction
	if t.Color != "" {
		col, err := ParseColor(t.Color)
		if err != nil {
			return 0, fmt.Errorf("table: %w", err)
		}
		f.Paint = col
	}
	center := mgl64.Vec3{0, t.TopY - f.Size[1]/2, 0}
	return c.Spawn("table", f, physics.Translation(center), false)
}

// SpawnObject builds the factory described by o and spawns it.
func (c *Composer) SpawnObject(o config.ObjectConfig) (ObjectID, error) {
	f, err := FactoryFor(o)
	if err != nil {
		return 0, fmt.Errorf("object %s: %w", o.Name, err)
	}
	return c.Spawn(o.Name, f, objectTransform(o), o.Driven)
}

// FactoryFor returns a configured factory for an object description.
func FactoryFor(o config.ObjectConfig) (Factory, error) {
	var color Color
	if o.Color != "" {
		var err error
		if color, err = ParseColor(o.Color); err != nil {
			return nil, err
		}
	}

	apply := func(m physics.BodyOptions) physics.BodyOptions {
		if o.Friction != nil {
			m.Friction = *o.Friction
		}
		if o.RollingFriction != nil {
			m.RollingFriction = *o.RollingFriction
		}
		m.Restitution = o.Restitution
		return m
	}

	switch o.Shape {
	case config.ShapeRing:
		f := NewPuckFactory(mesh.RingParams{
			OuterRadius: o.OuterRadius,
			InnerRadius: o.InnerRadius,
			Height:      o.Height,
			Segments:    o.Segments,
			Strategy:    mesh.ParseStrategy(o.Strategy),
		}, color, o.Mass)
		f.SetSegments(o.Segments)
		if o.Collision != "" {
			f.Collision = physics.ParseDescKind(o.Collision)
		}
		f.Margin = o.Margin
		f.Material = apply(f.Material)
		return f, nil

	case config.ShapeSphere:
		f := NewSphereFactory(o.Radius, color, o.Mass)
		if o.Margin > 0 {
			f.Margin = o.Margin
		}
		f.Material = apply(f.Material)
		return f, nil

	case config.ShapeBox:
		f := NewBoxFactory(toVec(o.Size), color, o.Mass)
		f.Margin = o.Margin
		f.Material = apply(f.Material)
		return f, nil

	default:
		return nil, fmt.Errorf("unknown shape %q", o.Shape)
	}
}

func objectTransform(o config.ObjectConfig) physics.Transform {
	rot := mgl64.QuatIdent()
	if o.Rotation != (config.Vec3{}) {
		r := o.Rotation
		rot = mgl64.AnglesToQuat(
			mgl64.DegToRad(r[1]), mgl64.DegToRad(r[0]), mgl64.DegToRad(r[2]),
			mgl64.YXZ,
		)
	}
	return physics.NewTransform(toVec(o.Position), rot)
}

func toVec(v config.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// Scene is a composed world with its registry and loop.
type Scene struct {
	World    *physics.World
	Registry *Registry
	Composer *Composer
	Loop     *Loop
}

// New builds the world, the table and every configured object.
func New(cfg *config.Config) (*Scene, error) {
	wc := physics.DefaultWorldConfig()
	wc.Gravity = toVec(cfg.Physics.Gravity)
	wc.FixedTimeStep = cfg.Physics.FixedTimeStep
	wc.SolverIterations = cfg.Physics.SolverIterations

	world := physics.NewWorld(wc)
	registry := NewRegistry()
	composer := NewComposer(world, registry)

	if _, err := composer.AddTable(cfg.Scene.Table); err != nil {
		return nil, err
	}
	for _, o := range cfg.Scene.Objects {
		if _, err := composer.SpawnObject(o); err != nil {
			return nil, err
		}
	}

	loop := NewLoop(world, registry, LoopConfig{
		MaxSubsteps: cfg.Physics.MaxSubsteps,
		MaxDelta:    cfg.Physics.MaxFrameDelta,
	})
	loop.SetView(View{
		Eye:    toVec(cfg.Camera.Eye),
		Target: toVec(cfg.Camera.Target),
		FOV:    cfg.Camera.FOV,
	})

	composer.log.Info("scene composed",
		zap.Int("objects", registry.Len()),
		zap.Int("bodies", len(world.Bodies())),
	)
	return &Scene{World: world, Registry: registry, Composer: composer, Loop: loop}, nil
}
