// Package scene holds the per-frame state of the viewer: the camera, the
// placed objects, and the global scale. Update turns one frame of input into
// the matrices the renderer needs.
package scene

import (
	"fmt"

	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/engine/camera"
	"github.com/Faultbox/stlview/pkg/math"
)

// Config contains scene configuration options.
type Config struct {
	FovY float32 // radians
	Near float32
	Far  float32

	// GlobalScale multiplies every object's own scale.
	GlobalScale float32
	ScaleGrow   float32 // factor per positive scale step
	ScaleShrink float32 // factor per negative scale step
	// ScaleStiffness is the spring frequency the displayed scale follows
	// the target with. Zero or less applies scale steps immediately.
	ScaleStiffness float32
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		FovY:           45 * math32.Pi / 180,
		Near:           0.01,
		Far:            1000,
		GlobalScale:    0.05,
		ScaleGrow:      1.1,
		ScaleShrink:    0.9,
		ScaleStiffness: 6,
	}
}

// FrameInput is the input gathered for one frame.
type FrameInput struct {
	Movement camera.Movement

	// LookDX and LookDY are the pointer delta since the last frame.
	// They only turn the camera while Looking is set.
	LookDX, LookDY float32
	Looking        bool

	// ScaleSteps is the net count of grow (+1) and shrink (-1) requests.
	ScaleSteps int
}

// Draw is one object ready to render.
type Draw struct {
	Mesh  MeshHandle
	Model math.Mat4
}

// Frame is everything the renderer needs for one frame.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Draws      []Draw
}

const (
	springFPS            = 60
	springStep   float32 = 1.0 / springFPS
	maxSpringLag float32 = 0.25
)

// Scene owns the camera and objects of the viewer.
type Scene struct {
	Camera  *camera.FlyCamera
	Objects []*Object

	config Config
	aspect float32

	// Displayed scale chases targetScale through the spring.
	targetScale float64
	scale       float64
	scaleVel    float64
	spring      harmonica.Spring
	springAcc   float32

	log *zap.Logger
}

// New creates a scene around cam. A nil logger disables logging.
func New(cam *camera.FlyCamera, cfg Config, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		Camera:      cam,
		config:      cfg,
		aspect:      4.0 / 3.0,
		targetScale: float64(cfg.GlobalScale),
		scale:       float64(cfg.GlobalScale),
		spring:      harmonica.NewSpring(harmonica.FPS(springFPS), float64(cfg.ScaleStiffness), 1),
		log:         log,
	}
}

// Add appends an object to the scene.
func (s *Scene) Add(o *Object) {
	s.Objects = append(s.Objects, o)
}

// SetViewport updates the projection aspect ratio. Non-positive sizes, as
// reported for a minimized window, are ignored.
func (s *Scene) SetViewport(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.aspect = float32(width) / float32(height)
}

// Aspect returns the current projection aspect ratio.
func (s *Scene) Aspect() float32 {
	return s.aspect
}

// GlobalScale returns the scale currently applied to every object.
func (s *Scene) GlobalScale() float32 {
	return float32(s.scale)
}

// TargetScale returns the scale the displayed scale is moving towards.
func (s *Scene) TargetScale() float32 {
	return float32(s.targetScale)
}

// Projection returns the projection matrix for the current viewport.
func (s *Scene) Projection() math.Mat4 {
	return math.Perspective(s.config.FovY, s.aspect, s.config.Near, s.config.Far)
}

// Update advances the scene by dt seconds and returns the frame to draw.
func (s *Scene) Update(in FrameInput, dt float32) (Frame, error) {
	if in.Looking {
		s.Camera.Look(in.LookDX, in.LookDY)
	}
	s.Camera.Move(in.Movement, dt)

	s.stepScale(in.ScaleSteps)
	s.animateScale(dt)

	for _, o := range s.Objects {
		o.Advance(dt)
	}

	view, err := s.Camera.ViewMatrix()
	if err != nil {
		return Frame{}, fmt.Errorf("view matrix: %w", err)
	}

	global := s.GlobalScale()
	draws := make([]Draw, 0, len(s.Objects))
	for _, o := range s.Objects {
		draws = append(draws, Draw{Mesh: o.Mesh, Model: o.ModelMatrix(global)})
	}

	return Frame{
		View:       view,
		Projection: s.Projection(),
		Draws:      draws,
	}, nil
}

func (s *Scene) stepScale(steps int) {
	if steps == 0 {
		return
	}
	for ; steps > 0; steps-- {
		s.targetScale *= float64(s.config.ScaleGrow)
	}
	for ; steps < 0; steps++ {
		s.targetScale *= float64(s.config.ScaleShrink)
	}
	s.log.Debug("global scale target", zap.Float64("scale", s.targetScale))
}

// animateScale advances the spring in fixed steps of 1/springFPS seconds.
func (s *Scene) animateScale(dt float32) {
	if s.config.ScaleStiffness <= 0 {
		s.scale, s.scaleVel = s.targetScale, 0
		return
	}
	if dt <= 0 {
		return
	}
	s.springAcc = min(s.springAcc+dt, maxSpringLag)
	for s.springAcc >= springStep {
		s.scale, s.scaleVel = s.spring.Update(s.scale, s.scaleVel, s.targetScale)
		s.springAcc -= springStep
	}
}

// Release frees every object's mesh and empties the scene.
func (s *Scene) Release() {
	for _, o := range s.Objects {
		if o.Mesh != nil {
			o.Mesh.Release()
		}
	}
	s.Objects = nil
}
