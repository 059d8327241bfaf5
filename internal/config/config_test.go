package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	if cfg.Camera.FOV != 7 {
		t.Errorf("expected fov 7, got %g", cfg.Camera.FOV)
	}
	if cfg.Camera.Eye != (Vec3{0, 70, 140}) {
		t.Errorf("expected eye (0,70,140), got %v", cfg.Camera.Eye)
	}

	if cfg.Physics.Gravity != (Vec3{0, -10, 0}) {
		t.Errorf("expected gravity (0,-10,0), got %v", cfg.Physics.Gravity)
	}
	if cfg.Physics.FixedTimeStep != 1.0/60.0 {
		t.Errorf("expected 60 Hz step, got %g", cfg.Physics.FixedTimeStep)
	}

	table := cfg.Scene.Table
	if table.Size != (Vec3{20, 2, 20}) || table.Friction != 4 || table.RollingFriction != 10 {
		t.Errorf("unexpected table %+v", table)
	}

	if len(cfg.Scene.Objects) != 6 {
		t.Fatalf("expected 6 default objects, got %d", len(cfg.Scene.Objects))
	}
	blue := cfg.Scene.Objects[0]
	if blue.Shape != ShapeRing || blue.OuterRadius != 0.25 || blue.InnerRadius != 0.2 ||
		blue.Height != 0.5 || blue.Segments != 32 || blue.Mass != 49 {
		t.Errorf("unexpected blue ring %+v", blue)
	}

	if cfg.Stream.WriteTimeout != 2*time.Second {
		t.Errorf("expected write timeout 2s, got %v", cfg.Stream.WriteTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

physics:
  max_substeps: 3
  gravity: [0, -9.81, 0]

scene:
  objects:
    - name: puck
      shape: ring
      color: "#112233"
      mass: 2
      outer_radius: 0.5
      inner_radius: 0.3
      height: 0.2
      segments: 12
      position: [1, 2, 3]
    - name: pinza-ball
      shape: sphere
      radius: 0.1
      driven: true
      position: [0, 1, 0]

stream:
  addr: ":9000"
  write_timeout: 500ms

logging:
  level: "debug"
  log_file: "sim.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || !cfg.Window.Fullscreen {
		t.Errorf("unexpected window %+v", cfg.Window)
	}
	if cfg.Physics.MaxSubsteps != 3 {
		t.Errorf("expected max substeps 3, got %d", cfg.Physics.MaxSubsteps)
	}
	if cfg.Physics.Gravity != (Vec3{0, -9.81, 0}) {
		t.Errorf("expected gravity from file, got %v", cfg.Physics.Gravity)
	}
	// Untouched keys keep their defaults.
	if cfg.Physics.SolverIterations != 10 {
		t.Errorf("expected default iterations, got %d", cfg.Physics.SolverIterations)
	}

	if len(cfg.Scene.Objects) != 2 {
		t.Fatalf("expected file objects to replace defaults, got %d", len(cfg.Scene.Objects))
	}
	puck := cfg.Scene.Objects[0]
	if puck.Segments != 12 || puck.Position != (Vec3{1, 2, 3}) {
		t.Errorf("unexpected puck %+v", puck)
	}
	if !cfg.Scene.Objects[1].Driven {
		t.Error("expected second object to be driven")
	}

	if cfg.Stream.Addr != ":9000" || cfg.Stream.WriteTimeout != 500*time.Millisecond {
		t.Errorf("unexpected stream %+v", cfg.Stream)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "sim.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\"): %v", err)
	}
	if len(cfg.Scene.Objects) != len(DefaultObjects()) {
		t.Errorf("expected default objects, got %d", len(cfg.Scene.Objects))
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "scene:\n  objects:\n    - name: a\n      shape: ring\n      outer_radius: 0.1\n      inner_radius: 0.2\n      height: 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Window.Width = 0 }, false},
		{"zero step", func(c *Config) { c.Physics.FixedTimeStep = 0 }, false},
		{"negative substeps", func(c *Config) { c.Physics.MaxSubsteps = -1 }, false},
		{"variable step", func(c *Config) { c.Physics.MaxSubsteps = 0 }, true},
		{"flat table", func(c *Config) { c.Scene.Table.Size[1] = 0 }, false},
		{"bad table color", func(c *Config) { c.Scene.Table.Color = "green" }, false},
		{"negative mass", func(c *Config) { c.Scene.Objects[0].Mass = -1 }, false},
		{"static object", func(c *Config) { c.Scene.Objects[0].Mass = 0 }, true},
		{"inner equals outer", func(c *Config) { c.Scene.Objects[0].InnerRadius = 0.25 }, false},
		{"zero height", func(c *Config) { c.Scene.Objects[0].Height = 0 }, false},
		{"few segments clamp later", func(c *Config) { c.Scene.Objects[0].Segments = 2 }, true},
		{"zero sphere radius", func(c *Config) { c.Scene.Objects[4].Radius = 0 }, false},
		{"unknown shape", func(c *Config) { c.Scene.Objects[4].Shape = "torus" }, false},
		{"duplicate name", func(c *Config) { c.Scene.Objects[1].Name = c.Scene.Objects[0].Name }, false},
		{"box", func(c *Config) {
			c.Scene.Objects = append(c.Scene.Objects, ObjectConfig{Name: "crate", Shape: ShapeBox, Mass: 1, Size: Vec3{1, 1, 1}})
		}, true},
		{"stream path", func(c *Config) { c.Stream.Path = "frames" }, false},
		{"nan outer radius", func(c *Config) { c.Scene.Objects[0].OuterRadius = math.NaN() }, false},
		{"inf outer radius", func(c *Config) { c.Scene.Objects[0].OuterRadius = math.Inf(1) }, false},
		{"nan ring height", func(c *Config) { c.Scene.Objects[0].Height = math.NaN() }, false},
		{"inf sphere radius", func(c *Config) { c.Scene.Objects[4].Radius = math.Inf(1) }, false},
		{"nan position", func(c *Config) { c.Scene.Objects[0].Position[1] = math.NaN() }, false},
		{"inf mass", func(c *Config) { c.Scene.Objects[0].Mass = math.Inf(1) }, false},
		{"nan step", func(c *Config) { c.Physics.FixedTimeStep = math.NaN() }, false},
		{"inf table size", func(c *Config) { c.Scene.Table.Size[0] = math.Inf(1) }, false},
		{"nan gravity", func(c *Config) { c.Physics.Gravity[1] = math.NaN() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "segments flag",
			setup: func() { *flagSegments = 64 },
			verify: func(t *testing.T, cfg *Config) {
				for _, o := range cfg.Scene.Objects {
					if o.Shape == ShapeRing && o.Segments != 64 {
						t.Errorf("%s: expected 64 segments, got %d", o.Name, o.Segments)
					}
					if o.Shape == ShapeSphere && o.Segments != 0 {
						t.Errorf("%s: sphere got segments %d", o.Name, o.Segments)
					}
				}
			},
			teardown: func() { *flagSegments = 0 },
		},
		{
			name:  "screenshot flag",
			setup: func() { *flagScreenshot = "shots" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.ScreenshotDir != "shots" {
					t.Errorf("expected screenshot dir 'shots', got %q", cfg.Window.ScreenshotDir)
				}
			},
			teardown: func() { *flagScreenshot = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Scene.Objects[0].Driven = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !loaded.Scene.Objects[0].Driven {
		t.Error("driven flag lost")
	}
	if loaded.Physics.FixedTimeStep != cfg.Physics.FixedTimeStep {
		t.Errorf("fixed step %g, want %g", loaded.Physics.FixedTimeStep, cfg.Physics.FixedTimeStep)
	}
}
