package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Shape names accepted in ObjectConfig.Shape.
const (
	ShapeRing   = "ring"
	ShapeSphere = "sphere"
	ShapeBox    = "box"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports every problem found in c.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if !(c.Camera.FOV > 0 && c.Camera.FOV < 180) {
		bad("camera fov %g", c.Camera.FOV)
	}
	if !positive(c.Camera.MinDistance) || !positive(c.Camera.MaxDistance) || c.Camera.MaxDistance < c.Camera.MinDistance {
		bad("camera distance range [%g, %g]", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if !positive(c.Physics.FixedTimeStep) {
		bad("physics fixed_time_step %g", c.Physics.FixedTimeStep)
	}
	if !finite(c.Physics.MaxFrameDelta) || c.Physics.MaxFrameDelta < 0 {
		bad("physics max_frame_delta %g", c.Physics.MaxFrameDelta)
	}
	if !finiteVec(c.Physics.Gravity) {
		bad("physics gravity %v", c.Physics.Gravity)
	}
	if c.Physics.MaxSubsteps < 0 {
		bad("physics max_substeps %d", c.Physics.MaxSubsteps)
	}

	t := c.Scene.Table
	if !positiveVec(t.Size) || !finite(t.TopY) {
		bad("table size %v top %g", t.Size, t.TopY)
	}
	if !validColor(t.Color) {
		bad("table color %q", t.Color)
	}

	names := make(map[string]bool, len(c.Scene.Objects))
	for i, o := range c.Scene.Objects {
		label := o.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		} else if names[o.Name] {
			bad("object %s: duplicate name", label)
		}
		names[o.Name] = true

		if !finiteVec(o.Position) || !finiteVec(o.Rotation) {
			bad("object %s: position %v rotation %v", label, o.Position, o.Rotation)
		}
		if o.Mass < 0 || !finite(o.Mass) {
			bad("object %s: mass %g", label, o.Mass)
		}
		if o.Color != "" && !validColor(o.Color) {
			bad("object %s: color %q", label, o.Color)
		}

		switch o.Shape {
		case ShapeRing:
			if !positive(o.InnerRadius) || !positive(o.OuterRadius) || o.OuterRadius <= o.InnerRadius {
				bad("object %s: ring radii inner %g outer %g", label, o.InnerRadius, o.OuterRadius)
			}
			if !positive(o.Height) {
				bad("object %s: ring height %g", label, o.Height)
			}
		case ShapeSphere:
			if !positive(o.Radius) {
				bad("object %s: sphere radius %g", label, o.Radius)
			}
		case ShapeBox:
			if !positiveVec(o.Size) {
				bad("object %s: box size %v", label, o.Size)
			}
		default:
			bad("object %s: unknown shape %q", label, o.Shape)
		}
	}

	if c.Stream.Path != "" && !strings.HasPrefix(c.Stream.Path, "/") {
		bad("stream path %q must start with /", c.Stream.Path)
	}

	return errors.Join(errs...)
}

// validColor accepts #rrggbb.
func validColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// positive rejects zero, negatives, NaN and +Inf.
func positive(x float64) bool {
	return x > 0 && finite(x)
}

func finiteVec(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func positiveVec(v Vec3) bool {
	return positive(v[0]) && positive(v[1]) && positive(v[2])
}
