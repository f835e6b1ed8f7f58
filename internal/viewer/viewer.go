// Package viewer runs the interactive STL viewer: window, input, scene
// update and rendering, one frame at a time on the main thread.
package viewer

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/config"
	"github.com/Faultbox/stlview/internal/engine/camera"
	"github.com/Faultbox/stlview/internal/engine/input"
	"github.com/Faultbox/stlview/internal/engine/mesh"
	"github.com/Faultbox/stlview/internal/engine/renderer"
	"github.com/Faultbox/stlview/internal/engine/scene"
	"github.com/Faultbox/stlview/internal/engine/screenshot"
	"github.com/Faultbox/stlview/internal/engine/window"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/pkg/math"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	scene    *scene.Scene
	welder   *mesh.Welder
	capturer *screenshot.Capturer
	log      *zap.Logger

	// Paths picked in the open dialog, consumed on the main thread.
	pending chan string
}

// New creates the window and renderer and loads every configured object.
// Any load failure aborts creation and leaves no GPU resources behind.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Int("objects", len(cfg.Scene.Objects)),
	)

	v := &Viewer{
		config:  cfg,
		welder:  mesh.NewWelder(logger.Named("mesh")),
		log:     log,
		pending: make(chan string, 1),
	}

	var err error
	v.capturer, err = screenshot.New(cfg.Screenshot.Dir, "stlview", cfg.Screenshot.Format)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the OpenGL context
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:       width,
		Height:      height,
		ClearColor:  cfg.Render.ClearColor,
		LightDir:    cfg.Render.LightDir,
		LightColor:  cfg.Render.LightColor,
		ObjectColor: cfg.Render.ObjectColor,
	}, logger.Named("renderer"))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	objects, err := scene.LoadObjects(objectSpecs(cfg), v.welder, upload)
	if err != nil {
		v.renderer.Close()
		v.window.Close()
		return nil, err
	}

	v.scene = scene.New(newCamera(cfg.Camera), sceneConfig(cfg), logger.Named("scene"))
	for _, o := range objects {
		v.scene.Add(o)
	}
	v.scene.SetViewport(width, height)
	v.input = input.New()

	log.Info("viewer initialized")
	return v, nil
}

func upload(m *mesh.Indexed) (scene.MeshHandle, error) {
	g, err := renderer.UploadMesh(m)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func objectSpecs(cfg *config.Config) []scene.ObjectSpec {
	specs := make([]scene.ObjectSpec, 0, len(cfg.Scene.Objects))
	for _, o := range cfg.Scene.Objects {
		specs = append(specs, scene.ObjectSpec{
			Path:         o.Path,
			Position:     math.V3(o.Position),
			Angle:        o.Angle,
			AngularSpeed: o.AngularSpeed,
			Scale:        o.Scale,
		})
	}
	return specs
}

func newCamera(cfg config.CameraConfig) *camera.FlyCamera {
	c := camera.NewFlyCamera(math.V3(cfg.Position))
	c.Speed = cfg.Speed
	c.VerticalSpeed = cfg.VerticalSpeed
	c.Sensitivity = cfg.Sensitivity
	return c
}

func sceneConfig(cfg *config.Config) scene.Config {
	return scene.Config{
		FovY:           cfg.Projection.FovDegrees * math32.Pi / 180,
		Near:           cfg.Projection.Near,
		Far:            cfg.Projection.Far,
		GlobalScale:    cfg.Scene.GlobalScale,
		ScaleGrow:      cfg.Scene.ScaleGrow,
		ScaleShrink:    cfg.Scene.ScaleShrink,
		ScaleStiffness: cfg.Scene.ScaleStiffness,
	}
}

// Run drives the frame loop until the window closes or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	v.log.Info("starting frame loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		if w, h, ok := v.input.Resized(); ok {
			width, height := v.window.DrawableSize()
			v.log.Debug("window resized", zap.Int32("width", w), zap.Int32("height", h))
			v.renderer.Resize(width, height)
			v.scene.SetViewport(width, height)
		}

		if v.input.OpenRequested() {
			v.openFileDialog()
		}
		select {
		case path := <-v.pending:
			v.addObject(path)
		default:
		}

		frame, err := v.scene.Update(v.input.Frame(), dt)
		if err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		v.renderer.Draw(&frame)
		if v.input.TakeScreenshot() {
			v.saveScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float32("global_scale", v.scene.GlobalScale()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// openFileDialog shows a native file dialog without blocking the frame loop.
// The selected path is queued for the main thread, which owns the GL context.
func (v *Viewer) openFileDialog() {
	go func() {
		path, err := dialog.File().
			Filter("STL files", "stl").
			Filter("All Files", "*").
			Title("Open STL").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case v.pending <- path:
		default:
			v.log.Warn("dropping file, another one is still pending", zap.String("path", path))
		}
	}()
}

// addObject loads one more surface and places it after the existing objects
// along -X. Failures are logged and leave the scene unchanged.
func (v *Viewer) addObject(path string) {
	spec := scene.ObjectSpec{
		Path:     path,
		Position: math.Vec3{X: -v.config.Scene.Spacing * float32(len(v.scene.Objects))},
		Scale:    1,
	}
	objects, err := scene.LoadObjects([]scene.ObjectSpec{spec}, v.welder, upload)
	if err != nil {
		v.log.Error("failed to open file", zap.String("path", path), zap.Error(err))
		return
	}
	v.scene.Add(objects[0])
	v.window.SetTitle(fmt.Sprintf("%s - %s", v.config.Window.Title, objects[0].Name))
	v.log.Info("object added", zap.String("name", objects[0].Name), zap.Int("objects", len(v.scene.Objects)))
}

func (v *Viewer) saveScreenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	if pixels == nil {
		return
	}
	path, err := v.capturer.Save(pixels, width, height)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases meshes, then the renderer and window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.scene != nil {
		v.scene.Release()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
