// Package report runs headless simulations and renders their results for
// the terminal.
package report

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/scene"
)

// Options control a headless run.
type Options struct {
	// Duration is the simulated time in seconds.
	Duration float64
	// FrameRate is the number of loop ticks per simulated second.
	FrameRate float64
	// Track names the object whose height is sampled every tick.
	Track string
}

// Result is the outcome of a headless run.
type Result struct {
	Final   scene.Frame
	Frames  int
	Track   string
	Heights []float64
}

// Simulate composes the configured scene and ticks it with a fixed clock.
func Simulate(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	if opts.Duration < 0 || math.IsNaN(opts.Duration) {
		return nil, fmt.Errorf("duration %g must not be negative", opts.Duration)
	}

	s, err := scene.New(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Track != "" {
		if _, ok := s.Registry.Lookup(opts.Track); !ok {
			return nil, fmt.Errorf("track %q: %w", opts.Track, scene.ErrUnknownObject)
		}
	}

	res := &Result{Track: opts.Track}
	rec := &scene.Recorder{Limit: 1}
	surface := scene.RenderFunc(func(f scene.Frame) error {
		if opts.Track != "" {
			if o, ok := f.Find(opts.Track); ok {
				res.Heights = append(res.Heights, o.Position.Y())
			}
		}
		return rec.Render(f)
	})
	if err := s.Loop.Start(surface, scene.FixedClock{Step: 1 / opts.FrameRate}); err != nil {
		return nil, err
	}
	defer s.Loop.Stop()

	ticks := int(math.Round(opts.Duration * opts.FrameRate))
	for i := 0; i < ticks; i++ {
		if err := s.Loop.Tick(ctx); err != nil {
			return nil, err
		}
	}

	res.Frames = rec.Total()
	res.Final, _ = rec.Last()
	stats := s.World.Stats()
	logger.Named("report").Info("simulation finished",
		zap.Int("frames", res.Frames),
		zap.Float64("sim_time", s.Loop.Time()),
		zap.Uint64("steps", stats.Steps),
		zap.Int("contacts", stats.Contacts),
	)
	return res, nil
}
