// Package renderer draws the world, the hero and the 2D overlays with OpenGL.
package renderer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/engine/shader"
	"github.com/Faultbox/manor/internal/logger"
	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/math"
)

const (
	fovY      = 45.0
	nearPlane = 0.1
	farPlane  = 100.0

	// fogDensity is the exponential fog density; fog and clear color are black.
	fogDensity = 0.15

	// evictAfter is the number of frames a mesh may go undrawn before its
	// buffers are released.
	evictAfter = 300
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// ShowBounds draws the bounding box of every mesh.
	ShowBounds bool
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	meshProgram    *shader.Program
	overlayProgram *shader.Program

	projection math.Mat4
	view       math.Mat4

	meshes map[*mesh.Mesh]*gpuMesh
	frame  uint64

	// hero holds the interpolated hero frame.
	hero    *gpuMesh
	scratch []mesh.Vertex

	overlay gpuLines
	bounds  gpuLines
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		view:   math.Identity(),
		meshes: make(map[*mesh.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)

	var err error
	r.meshProgram, err = shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.overlayProgram, err = shader.New(overlayVertexShader, overlayFragmentShader)
	if err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("overlay shader: %w", err)
	}

	r.hero = newDynamicMesh()
	r.overlay.init()
	r.bounds.init()
	r.Resize(cfg.Width, cfg.Height)

	logger.Debug("renderer created",
		zap.Uint32("mesh_program", r.meshProgram.ID),
		zap.Uint32("overlay_program", r.overlayProgram.ID),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer", zap.Int("meshes", len(r.meshes)))
	for m, gm := range r.meshes {
		gm.delete()
		delete(r.meshes, m)
	}
	r.hero.delete()
	r.overlay.delete()
	r.bounds.delete()
	r.meshProgram.Delete()
	r.overlayProgram.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.projection = projection(width, height)
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// projection builds the scene frustum: 45 degree vertical field of view with
// planes at 0.1 and 100.
func projection(width, height int) math.Mat4 {
	aspect := float32(width)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	y := nearPlane * math32.Tan(math.DegToRad(fovY)*0.5)
	x := aspect * y
	return math.Frustum(-x, x, -y, y, nearPlane, farPlane)
}

// Projection returns the current scene projection.
func (r *Renderer) Projection() math.Mat4 {
	return r.projection
}

// Begin starts a new frame with the given camera view.
func (r *Renderer) Begin(view math.Mat4) {
	r.frame++
	r.view = view
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uProjection", r.projection)
	r.meshProgram.SetMat4("uView", r.view)
	r.meshProgram.SetFloat("uFogDensity", fogDensity)
}

// End finishes the current frame and releases meshes that stopped being
// drawn.
func (r *Renderer) End() {
	for m, gm := range r.meshes {
		if r.frame-gm.lastUsed > evictAfter {
			gm.delete()
			delete(r.meshes, m)
		}
	}
}

// DrawMesh draws frame 0 of a static mesh.
func (r *Renderer) DrawMesh(m *mesh.Mesh) {
	gm, ok := r.meshes[m]
	if !ok {
		gm = newStaticMesh(m)
		r.meshes[m] = gm
	}
	gm.lastUsed = r.frame

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uModel", math.Identity())
	gm.draw()

	if r.config.ShowBounds {
		r.drawBounds(m, 0, math.Identity())
	}
}

// DrawHero draws m blended between two frames.
func (r *Renderer) DrawHero(model math.Mat4, m *mesh.Mesh, from, to int, t float32) {
	r.scratch = m.Interpolate(from, to, t, r.scratch)
	r.hero.update(r.scratch, m.Triangles)

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uModel", model)
	r.hero.draw()

	if r.config.ShowBounds {
		r.drawBounds(m, from, model)
	}
}

func (r *Renderer) drawBounds(m *mesh.Mesh, frame int, model math.Mat4) {
	box, err := m.ComputeBBox(frame)
	if err != nil {
		return
	}
	r.overlayProgram.Use()
	r.overlayProgram.SetMat4("uMVP", r.projection.Mul(r.view).Mul(model))
	r.overlayProgram.SetVec4("uColor", math.Vec4{0, 1, 0, 1})
	r.bounds.draw(gl.LINES, box.WireframeVertices())
}

// DrawProgress draws the loading bar. progress is in [0, 1].
func (r *Renderer) DrawProgress(progress float32) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.begin2D()
	defer r.end2D()

	r.overlayProgram.SetVec4("uColor", math.Vec4{1, 1, 1, 1})
	r.overlay.draw(gl.LINE_LOOP, rect(50, 220, 950, 250))
	r.overlay.draw(gl.TRIANGLES, quad(50, 220, 50+900*progress, 250))
}

// DrawConsole draws the console backdrop over the upper half of the screen.
// Console text goes to the log.
func (r *Renderer) DrawConsole(lines []string) {
	r.begin2D()
	defer r.end2D()

	gl.Enable(gl.BLEND)
	r.overlayProgram.SetVec4("uColor", math.Vec4{0, 0, 0, 0.75})
	r.overlay.draw(gl.TRIANGLES, quad(0, 500, 1000, 1000))
	gl.Disable(gl.BLEND)

	// One tick per scrollback line along the left edge.
	r.overlayProgram.SetVec4("uColor", math.Vec4{0.6, 0.6, 0.6, 1})
	top := float32(992)
	for i := len(lines) - 1; i >= 0 && top > 508; i-- {
		r.overlay.draw(gl.LINES, []float32{8, top, 0, 16, top, 0})
		top -= 16
	}
}

// begin2D switches to a 1000x1000 virtual screen with the origin at the
// bottom left.
func (r *Renderer) begin2D() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	r.overlayProgram.Use()
	r.overlayProgram.SetMat4("uMVP", math.Ortho(0, 1000, 0, 1000, -1, 1))
}

func (r *Renderer) end2D() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
}

func quad(x0, y0, x1, y1 float32) []float32 {
	return []float32{
		x0, y0, 0, x1, y0, 0, x1, y1, 0,
		x0, y0, 0, x1, y1, 0, x0, y1, 0,
	}
}

func rect(x0, y0, x1, y1 float32) []float32 {
	return []float32{x0, y0, 0, x1, y0, 0, x1, y1, 0, x0, y1, 0}
}
