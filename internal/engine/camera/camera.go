// Package camera provides the orbit camera used to view the table.
package camera

import (
	gomath "math"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Elevation above the XZ plane, radians
	RotationY float32 // Yaw around +Y, radians, zero looks down -Z

	// Constraints. Pitch stays above the table plane.
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a camera at eye looking at center.
func NewOrbitCamera(eye, center math.Vec3) *OrbitCamera {
	c := &OrbitCamera{
		Center:          center,
		MinDistance:     5,
		MaxDistance:     550,
		MinPitch:        0,
		MaxPitch:        gomath.Pi/2 - 0.01,
		FOV:             45,
		Near:            1,
		Far:             1000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.LookFrom(eye)
	return c
}

// FromConfig creates a camera with the configured view and limits.
func FromConfig(cfg config.CameraConfig) *OrbitCamera {
	c := NewOrbitCamera(math.Vec3From64(cfg.Eye), math.Vec3From64(cfg.Target))
	if cfg.MinDistance > 0 {
		c.MinDistance = float32(cfg.MinDistance)
	}
	if cfg.MaxDistance > 0 {
		c.MaxDistance = float32(cfg.MaxDistance)
	}
	if cfg.FOV > 0 {
		c.FOV = float32(cfg.FOV)
	}
	if cfg.Near > 0 {
		c.Near = float32(cfg.Near)
	}
	if cfg.Far > cfg.Near {
		c.Far = float32(cfg.Far)
	}
	c.clamp()
	return c
}

// LookFrom moves the camera to eye, keeping the center.
func (c *OrbitCamera) LookFrom(eye math.Vec3) {
	d := eye.Sub(c.Center)
	c.Distance = d.Length()
	if c.Distance == 0 {
		c.RotationX, c.RotationY = 0, 0
		return
	}
	c.RotationX = float32(gomath.Asin(float64(d.Y / c.Distance)))
	c.RotationY = float32(gomath.Atan2(float64(d.X), float64(d.Z)))
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))

	return c.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Center, up)
}

// ProjectionMatrix returns the perspective projection for the aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	fov := c.FOV * gomath.Pi / 180
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.clamp()
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	c.RotationX = min(max(c.RotationX, c.MinPitch), c.MaxPitch)
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}
