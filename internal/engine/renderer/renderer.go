// Package renderer draws scene frames with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/pucktable/internal/engine/camera"
	"github.com/Faultbox/pucktable/internal/engine/lighting"
	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/engine/shader"
	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/scene"
	"github.com/Faultbox/pucktable/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Near       float32
	Far        float32
	Background scene.Color
	// Present is called after each frame is drawn, normally the window's
	// buffer swap.
	Present func()
}

// gpuMesh is an uploaded mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer draws frames. It implements scene.RenderSurface and must be used
// on the thread owning the GL context.
type Renderer struct {
	config   Config
	registry *scene.Registry
	lights   *lighting.Rig
	program  *shader.Program
	meshes   map[*mesh.Mesh]*gpuMesh
	drawn    map[*mesh.Mesh]bool
	log      *zap.Logger
}

// New creates a renderer drawing the meshes held by registry.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, registry *scene.Registry, lights *lighting.Rig) (*Renderer, error) {
	if cfg.Near <= 0 {
		cfg.Near = 1
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = 1000
	}
	r := &Renderer{
		config:   cfg,
		registry: registry,
		lights:   lights,
		meshes:   make(map[*mesh.Mesh]*gpuMesh),
		drawn:    make(map[*mesh.Mesh]bool),
		log:      logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.MULTISAMPLE)
	bg := cfg.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.New(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.log.Debug("shader program created", zap.Uint32("program", r.program.ID))
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for m := range r.meshes {
		r.release(m)
	}
	r.program.Delete()
}

// Resize handles framebuffer resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Render draws every object of f from f.View and presents the result.
func (r *Renderer) Render(f scene.Frame) error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	eye := math.Vec3From64(f.View.Eye)
	cam := camera.NewOrbitCamera(eye, math.Vec3From64(f.View.Target))
	if f.View.FOV > 0 {
		cam.FOV = float32(f.View.FOV)
	}
	cam.Near, cam.Far = r.config.Near, r.config.Far
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(aspect)

	p := r.program
	p.Use()
	p.SetMat4("uView", (*[16]float32)(&view))
	p.SetMat4("uProjection", (*[16]float32)(&proj))
	p.SetVec3("uEye", eye.Array())
	if r.lights != nil {
		p.SetVec3("uAmbient", r.lights.AmbientColor())
		p.SetInt("uLightCount", int32(r.lights.Count()))
		p.SetVec3Array("uLightPos", r.lights.Positions())
		p.SetVec3Array("uLightColor", r.lights.Colors())
	}

	clear(r.drawn)
	for _, o := range f.Objects {
		obj, ok := r.registry.Object(o.ID)
		if !ok || obj.Mesh == nil {
			continue
		}
		g, err := r.upload(obj.Mesh)
		if err != nil {
			return fmt.Errorf("object %s: %w", o.Name, err)
		}
		r.drawn[obj.Mesh] = true

		model := math.Compose(
			math.Vec3From64(o.Position),
			math.QuatFrom64(o.Rotation.W, o.Rotation.V),
			math.Vec3{X: 1, Y: 1, Z: 1},
		)
		normal := model.NormalMatrix()
		p.SetMat4("uModel", (*[16]float32)(&model))
		p.SetMat3("uNormal", &normal)
		p.SetVec3("uColor", [3]float32{obj.Color.R, obj.Color.G, obj.Color.B})

		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)

	// Objects removed from the scene leave their buffers behind.
	for m := range r.meshes {
		if !r.drawn[m] {
			r.release(m)
		}
	}

	if err := glError(); err != nil {
		return err
	}
	if r.config.Present != nil {
		r.config.Present()
	}
	return nil
}

// upload returns the GPU copy of m, creating it on first use. Vertices are
// interleaved position and normal.
func (r *Renderer) upload(m *mesh.Mesh) (*gpuMesh, error) {
	if g, ok := r.meshes[m]; ok {
		return g, nil
	}
	if len(m.Faces) == 0 {
		return nil, fmt.Errorf("upload mesh: no faces")
	}

	vertices := make([]float32, 0, len(m.Vertices)*6)
	for _, v := range m.Vertices {
		vertices = append(vertices,
			float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]),
			float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2]),
		)
	}
	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}

	g := &gpuMesh{count: int32(len(indices))}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	// Normal attribute (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.meshes[m] = g
	r.log.Debug("mesh uploaded",
		zap.Uint32("vao", g.vao),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
	)
	return g, nil
}

func (r *Renderer) release(m *mesh.Mesh) {
	g, ok := r.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	delete(r.meshes, m)
}

func glError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}
