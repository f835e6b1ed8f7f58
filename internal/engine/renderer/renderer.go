// Package renderer uploads welded meshes and draws scene frames with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/engine/renderer/shaders"
	"github.com/Faultbox/stlview/internal/engine/scene"
	"github.com/Faultbox/stlview/internal/engine/shader"
)

// Config holds renderer configuration.
type Config struct {
	Width, Height int32

	ClearColor  [3]float32
	LightDir    [3]float32
	LightColor  [3]float32
	ObjectColor [3]float32
}

// Renderer draws scene frames.
type Renderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger
}

// New creates a new renderer.
// It must be called after the OpenGL context is created.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{config: cfg, log: log}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)

	var err error
	r.program, err = shader.NewProgram(shaders.MeshVertexShader, shaders.MeshFragmentShader,
		"model", "view", "projection", "lightDir", "lightColor", "objectColor")
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int32) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, width, height)
	r.log.Debug("renderer resized", zap.Int32("width", width), zap.Int32("height", height))
}

// Draw clears the framebuffer and draws every object of the frame.
// Draws whose mesh was not uploaded by this package are skipped.
func (r *Renderer) Draw(f *scene.Frame) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	r.program.SetVec3("lightDir", r.config.LightDir)
	r.program.SetVec3("lightColor", r.config.LightColor)
	r.program.SetVec3("objectColor", r.config.ObjectColor)

	r.program.SetMat4("view", f.View)
	r.program.SetMat4("projection", f.Projection)

	for _, d := range f.Draws {
		g, ok := d.Mesh.(*GPUMesh)
		if !ok || g.vao == 0 {
			continue
		}
		r.program.SetMat4("model", d.Model)
		g.draw()
	}
	gl.BindVertexArray(0)
}

// ReadPixels reads the current framebuffer back as bottom-up RGBA.
// It returns nil for an empty viewport.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = int(r.config.Width), int(r.config.Height)
	if width <= 0 || height <= 0 {
		return nil, 0, 0
	}
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}
