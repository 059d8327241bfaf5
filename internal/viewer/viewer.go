// Package viewer runs the interactive SDL window over a composed scene.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/engine/camera"
	"github.com/Faultbox/pucktable/internal/engine/input"
	"github.com/Faultbox/pucktable/internal/engine/lighting"
	"github.com/Faultbox/pucktable/internal/engine/renderer"
	"github.com/Faultbox/pucktable/internal/engine/window"
	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/scene"
)

// Viewer is the interactive viewer instance.
type Viewer struct {
	config   *config.Config
	scene    *scene.Scene
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	running  bool
	log      *zap.Logger
}

// New composes the scene and opens the window.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{config: cfg, log: logger.Named("viewer")}
	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	v.scene, err = scene.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compose scene: %w", err)
	}

	lights, err := lighting.FromConfig(cfg.Scene.Light)
	if err != nil {
		return nil, err
	}
	background, err := scene.ParseColor(cfg.Scene.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	// Window first, it owns the OpenGL context.
	v.window, err = window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Near:       float32(cfg.Camera.Near),
		Far:        float32(cfg.Camera.Far),
		Background: background,
		Present:    v.window.SwapBuffers,
	}, v.scene.Registry, lights)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.camera = camera.FromConfig(cfg.Camera)

	if err := v.scene.Loop.Start(v.renderer, scene.NewWallClock()); err != nil {
		v.Close()
		return nil, err
	}

	v.log.Info("viewer initialized", zap.Int("objects", v.scene.Registry.Len()))
	return v, nil
}

// Run ticks the scene once per displayed frame until the window closes or
// ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	var frameTime time.Duration
	if v.config.Window.FPSLimit > 0 {
		frameTime = time.Second / time.Duration(v.config.Window.FPSLimit)
	}
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		start := time.Now()
		if ctx.Err() != nil {
			break
		}

		if v.input.Update() || v.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
			break
		}
		v.handleEvents()

		dx, dy := v.input.Drag()
		if dx != 0 || dy != 0 {
			v.camera.HandleDrag(dx, dy)
		}
		if w := v.input.Wheel(); w != 0 {
			v.camera.HandleZoom(w)
		}
		v.scene.Loop.SetView(v.view())

		if err := v.scene.Loop.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("frame: %w", err)
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := v.scene.World.Stats()
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("contacts", stats.Contacts),
				zap.Float64("sim_time", v.scene.Loop.Time()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameTime > 0 {
			if rest := frameTime - time.Since(start); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	v.running = false
	if dir := v.config.Window.ScreenshotDir; dir != "" {
		if _, err := v.renderer.Screenshot(dir); err != nil {
			v.log.Warn("screenshot failed", zap.Error(err))
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		if event.Type == input.EventWindowResize {
			v.renderer.Resize(v.window.DrawableSize())
		}
	}
}

func (v *Viewer) view() scene.View {
	eye := v.camera.Position()
	c := v.camera.Center
	return scene.View{
		Eye:    [3]float64{float64(eye.X), float64(eye.Y), float64(eye.Z)},
		Target: [3]float64{float64(c.X), float64(c.Y), float64(c.Z)},
		FOV:    float64(v.camera.FOV),
	}
}

// Close stops the loop and releases the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.scene != nil {
		v.scene.Loop.Stop()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
