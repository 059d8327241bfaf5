package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// View is the camera a frame is rendered from.
type View struct {
	Eye    mgl64.Vec3 `json:"eye"`
	Target mgl64.Vec3 `json:"target"`
	FOV    float64    `json:"fov"`
}

// ObjectState is the displayed state of one object in a frame.
type ObjectState struct {
	ID       ObjectID   `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Color    string     `json:"color"`
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
	Driven   bool       `json:"driven,omitempty"`
}

// Frame is a snapshot handed to a RenderSurface. It shares no memory with
// the loop, so surfaces may keep it.
type Frame struct {
	Seq      uint64        `json:"seq"`
	Time     float64       `json:"time"`
	Delta    float64       `json:"delta"`
	Substeps int           `json:"substeps"`
	Contacts int           `json:"contacts"`
	View     View          `json:"view"`
	Objects  []ObjectState `json:"objects"`
}

// Find returns the state of the named object.
func (f Frame) Find(name string) (ObjectState, bool) {
	for _, o := range f.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return ObjectState{}, false
}

// RenderSurface draws frames. Render is called once per tick from the loop
// goroutine.
type RenderSurface interface {
	Render(f Frame) error
}

// RenderFunc adapts a function to RenderSurface.
type RenderFunc func(f Frame) error

func (fn RenderFunc) Render(f Frame) error { return fn(f) }
