// Package lighting holds the scene lights uploaded to the object shader.
package lighting

import (
	"fmt"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/scene"
)

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 4

// Ambient is a uniform light reaching every surface.
type Ambient struct {
	Color     [3]float32
	Intensity float32
}

// PointLight is a point light source for GPU upload.
type PointLight struct {
	Position  [3]float32 // World position
	Color     [3]float32 // RGB color (0-1 range)
	Intensity float32
}

// Rig is the set of lights a frame is shaded with.
type Rig struct {
	Ambient Ambient
	Points  []PointLight
}

// FromConfig builds the ambient light and the single point light of cfg.
func FromConfig(cfg config.LightConfig) (*Rig, error) {
	ambient, err := parse(cfg.AmbientColor)
	if err != nil {
		return nil, fmt.Errorf("ambient light: %w", err)
	}
	point, err := parse(cfg.PointColor)
	if err != nil {
		return nil, fmt.Errorf("point light: %w", err)
	}

	r := &Rig{Ambient: Ambient{Color: ambient, Intensity: float32(cfg.AmbientIntensity)}}
	r.AddLight(PointLight{
		Position: [3]float32{
			float32(cfg.PointPosition[0]),
			float32(cfg.PointPosition[1]),
			float32(cfg.PointPosition[2]),
		},
		Color:     point,
		Intensity: float32(cfg.PointIntensity),
	})
	return r, nil
}

// parse reads a hex color; empty means white.
func parse(hex string) ([3]float32, error) {
	if hex == "" {
		return [3]float32{1, 1, 1}, nil
	}
	c, err := scene.ParseColor(hex)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{c.R, c.G, c.B}, nil
}

// AddLight adds a point light.
// Returns false if the rig is full.
func (r *Rig) AddLight(light PointLight) bool {
	if len(r.Points) >= MaxPointLights {
		return false
	}
	r.Points = append(r.Points, light)
	return true
}

// Count returns the number of point lights.
func (r *Rig) Count() int { return len(r.Points) }

// Positions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...]
func (r *Rig) Positions() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range r.Points {
		copy(result[i*3:], light.Position[:])
	}
	return result
}

// Colors returns light colors premultiplied by intensity, flattened like
// Positions.
func (r *Rig) Colors() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range r.Points {
		for k := 0; k < 3; k++ {
			result[i*3+k] = light.Color[k] * light.Intensity
		}
	}
	return result
}

// AmbientColor returns the ambient color premultiplied by its intensity.
func (r *Rig) AmbientColor() [3]float32 {
	a := r.Ambient
	return [3]float32{a.Color[0] * a.Intensity, a.Color[1] * a.Intensity, a.Color[2] * a.Intensity}
}
