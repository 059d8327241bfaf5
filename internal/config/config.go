// Package config handles loading and validation of the table settings.
package config

import "time"

// Vec3 is an x, y, z triple in world units.
type Vec3 [3]float64

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Physics PhysicsConfig `yaml:"physics"`
	Scene   SceneConfig   `yaml:"scene"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings for the viewer.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
	// ScreenshotDir receives a PNG of the last frame when the viewer exits.
	ScreenshotDir string `yaml:"screenshot_dir,omitempty"`
}

// CameraConfig holds the orbit camera setup.
type CameraConfig struct {
	FOV         float64 `yaml:"fov"` // vertical, degrees
	Eye         Vec3    `yaml:"eye"`
	Target      Vec3    `yaml:"target"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	Near        float64 `yaml:"near"`
	Far         float64 `yaml:"far"`
}

// PhysicsConfig holds world and stepping settings.
type PhysicsConfig struct {
	Gravity          Vec3    `yaml:"gravity"`
	FixedTimeStep    float64 `yaml:"fixed_time_step"`
	MaxSubsteps      int     `yaml:"max_substeps"`
	SolverIterations int     `yaml:"solver_iterations"`
	// MaxFrameDelta clamps the wall-clock delta fed to the world, in seconds.
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
}

// SceneConfig describes the table, the lights and the spawned objects.
type SceneConfig struct {
	Background string         `yaml:"background"`
	Table      TableConfig    `yaml:"table"`
	Light      LightConfig    `yaml:"light"`
	Objects    []ObjectConfig `yaml:"objects"`
}

// TableConfig describes the static table box. Its top face sits at TopY.
type TableConfig struct {
	Size            Vec3    `yaml:"size"`
	TopY            float64 `yaml:"top_y"`
	Color           string  `yaml:"color"`
	Friction        float64 `yaml:"friction"`
	RollingFriction float64 `yaml:"rolling_friction"`
	Margin          float64 `yaml:"margin"`
}

// LightConfig holds the ambient and point light rig.
type LightConfig struct {
	AmbientColor     string  `yaml:"ambient_color"`
	AmbientIntensity float64 `yaml:"ambient_intensity"`
	PointColor       string  `yaml:"point_color"`
	PointIntensity   float64 `yaml:"point_intensity"`
	PointPosition    Vec3    `yaml:"point_position"`
}

// ObjectConfig describes one spawned object. Which dimension fields apply
// depends on Shape.
type ObjectConfig struct {
	Name  string  `yaml:"name"`
	Shape string  `yaml:"shape"` // ring, sphere, box
	Color string  `yaml:"color"`
	Mass  float64 `yaml:"mass"`

	// Ring dimensions.
	OuterRadius float64 `yaml:"outer_radius,omitempty"`
	InnerRadius float64 `yaml:"inner_radius,omitempty"`
	Height      float64 `yaml:"height,omitempty"`
	Segments    int     `yaml:"segments,omitempty"`
	Strategy    string  `yaml:"strategy,omitempty"`

	// Sphere radius.
	Radius float64 `yaml:"radius,omitempty"`
	// Box size.
	Size Vec3 `yaml:"size,omitempty"`

	// Collision overrides the collision shape kind, e.g. hull or hacd.
	Collision string  `yaml:"collision,omitempty"`
	Margin    float64 `yaml:"margin,omitempty"`

	Friction        *float64 `yaml:"friction,omitempty"`
	RollingFriction *float64 `yaml:"rolling_friction,omitempty"`
	Restitution     float64  `yaml:"restitution,omitempty"`

	Position Vec3 `yaml:"position"`
	// Rotation holds Euler angles in degrees, applied Y, X, Z.
	Rotation Vec3 `yaml:"rotation,omitempty"`

	// Driven objects keep colliding but are positioned externally.
	Driven bool `yaml:"driven,omitempty"`
}

// StreamConfig holds the websocket frame stream settings.
type StreamConfig struct {
	Addr         string        `yaml:"addr"`
	Path         string        `yaml:"path"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Buffer       int           `yaml:"buffer"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with the stock table scene.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Puck Table",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			FOV:         7,
			Eye:         Vec3{0, 70, 140},
			MinDistance: 5,
			MaxDistance: 550,
			Near:        1,
			Far:         1000,
		},
		Physics: PhysicsConfig{
			Gravity:          Vec3{0, -10, 0},
			FixedTimeStep:    1.0 / 60.0,
			MaxSubsteps:      10,
			SolverIterations: 10,
			MaxFrameDelta:    0.25,
		},
		Scene: SceneConfig{
			Background: "#1e1e1e",
			Table: TableConfig{
				Size:            Vec3{20, 2, 20},
				Color:           "#a0afa4",
				Friction:        4,
				RollingFriction: 10,
				Margin:          0.05,
			},
			Light: LightConfig{
				AmbientColor:     "#ffffff",
				AmbientIntensity: 0.5,
				PointColor:       "#ffffff",
				PointIntensity:   1,
				PointPosition:    Vec3{0, 25, 125},
			},
			Objects: DefaultObjects(),
		},
		Stream: StreamConfig{
			Addr:         "127.0.0.1:8085",
			Path:         "/frames",
			WriteTimeout: 2 * time.Second,
			Buffer:       4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultObjects returns the stock pucks and spheres, lifted one unit above
// the table top so they drop into place.
func DefaultObjects() []ObjectConfig {
	ring := func(name, color string, outer, inner, height float64, segments int, mass float64, x float64) ObjectConfig {
		return ObjectConfig{
			Name:        name,
			Shape:       "ring",
			Color:       color,
			Mass:        mass,
			OuterRadius: outer,
			InnerRadius: inner,
			Height:      height,
			Segments:    segments,
			Collision:   "hacd",
			Position:    Vec3{x, 1, 0},
		}
	}
	sphere := func(name, color string, x, z float64) ObjectConfig {
		return ObjectConfig{
			Name:     name,
			Shape:    "sphere",
			Color:    color,
			Mass:     4,
			Radius:   0.27,
			Margin:   0.05,
			Position: Vec3{x, 1, z},
		}
	}
	return []ObjectConfig{
		ring("blue-ring", "#3880ff", 0.25, 0.2, 0.5, 32, 49, -3),
		ring("red-ring-1", "#eb445a", 0.275, 0.125, 0.3, 32, 49, 0),
		ring("red-ring-2", "#eb445a", 0.275, 0.125, 0.3, 32, 49, 4),
		ring("red-ring-3", "#eb445a", 0.275, 0.125, 0.3, 32, 49, 6),
		sphere("green-sphere", "#2dd36f", 8, 5),
		sphere("indigo-sphere", "#5260ff", -5, 0),
	}
}
