package lighting

import (
	"testing"

	"github.com/Faultbox/pucktable/internal/config"
)

func TestFromConfig(t *testing.T) {
	r, err := FromConfig(config.Default().Scene.Light)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
	if got := r.AmbientColor(); got != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("AmbientColor() = %v, want half white", got)
	}

	pos := r.Positions()
	if len(pos) != MaxPointLights*3 {
		t.Fatalf("len(Positions()) = %d", len(pos))
	}
	if pos[0] != 0 || pos[1] != 25 || pos[2] != 125 || pos[3] != 0 {
		t.Errorf("Positions() = %v", pos[:6])
	}
	if col := r.Colors(); col[0] != 1 || col[3] != 0 {
		t.Errorf("Colors() = %v", col[:6])
	}
}

func TestFromConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LightConfig
	}{
		{"ambient", config.LightConfig{AmbientColor: "nope"}},
		{"point", config.LightConfig{PointColor: "#12"}},
	}
	for _, tt := range tests {
		if _, err := FromConfig(tt.cfg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestAddLightLimit(t *testing.T) {
	r := &Rig{}
	for i := 0; i < MaxPointLights; i++ {
		if !r.AddLight(PointLight{Intensity: 1}) {
			t.Fatalf("light %d rejected", i)
		}
	}
	if r.AddLight(PointLight{}) {
		t.Error("rig accepted more than MaxPointLights")
	}
}
