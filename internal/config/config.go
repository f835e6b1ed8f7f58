// Package config handles viewer configuration loading and management.
package config

import "gopkg.in/yaml.v3"

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Camera     CameraConfig     `yaml:"camera"`
	Projection ProjectionConfig `yaml:"projection"`
	Render     RenderConfig     `yaml:"render"`
	Scene      SceneConfig      `yaml:"scene"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds the initial camera placement and its controls.
type CameraConfig struct {
	Position      [3]float32 `yaml:"position"`
	Speed         float32    `yaml:"speed"`
	VerticalSpeed float32    `yaml:"vertical_speed"`
	Sensitivity   float32    `yaml:"sensitivity"`
}

// ProjectionConfig holds perspective projection settings.
type ProjectionConfig struct {
	FovDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
}

// RenderConfig holds colors and lighting.
type RenderConfig struct {
	ClearColor  [3]float32 `yaml:"clear_color"`
	LightDir    [3]float32 `yaml:"light_dir"`
	LightColor  [3]float32 `yaml:"light_color"`
	ObjectColor [3]float32 `yaml:"object_color"`
}

// SceneConfig holds the objects to load and the global scale controls.
type SceneConfig struct {
	GlobalScale    float32 `yaml:"global_scale"`
	ScaleGrow      float32 `yaml:"scale_grow"`
	ScaleShrink    float32 `yaml:"scale_shrink"`
	ScaleStiffness float32 `yaml:"scale_stiffness"`

	// Spacing is the X distance between objects added from the command line.
	Spacing float32        `yaml:"spacing"`
	Objects []ObjectConfig `yaml:"objects"`
}

// ObjectConfig places one STL file in the scene.
type ObjectConfig struct {
	Path         string     `yaml:"path"`
	Position     [3]float32 `yaml:"position"`
	Angle        float32    `yaml:"angle"`
	AngularSpeed float32    `yaml:"angular_speed"`
	Scale        float32    `yaml:"scale"`
}

// UnmarshalYAML defaults an omitted scale to 1.
func (o *ObjectConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ObjectConfig
	obj := plain{Scale: 1}
	if err := value.Decode(&obj); err != nil {
		return err
	}
	*o = ObjectConfig(obj)
	return nil
}

// ScreenshotConfig controls where F12 screenshots go.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "STL Viewer",
			Width:  1200,
			Height: 900,
			VSync:  true,
		},
		Camera: CameraConfig{
			Position:      [3]float32{0, 0, 100.5},
			Speed:         10,
			VerticalSpeed: 10,
			Sensitivity:   0.001,
		},
		Projection: ProjectionConfig{
			FovDegrees: 45,
			Near:       0.01,
			Far:        1000,
		},
		Render: RenderConfig{
			ClearColor:  [3]float32{0.1, 0.2, 0.3},
			LightDir:    [3]float32{1, 1, 1},
			LightColor:  [3]float32{1, 1, 1},
			ObjectColor: [3]float32{0.8, 0.8, 0.8},
		},
		Scene: SceneConfig{
			GlobalScale:    0.05,
			ScaleGrow:      1.1,
			ScaleShrink:    0.9,
			ScaleStiffness: 6,
			Spacing:        60,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// AddPaths appends one object per path, spaced along -X after the objects
// already configured. Added objects spin at one radian per second.
func (c *Config) AddPaths(paths []string) {
	for _, p := range paths {
		x := -c.Scene.Spacing * float32(len(c.Scene.Objects))
		c.Scene.Objects = append(c.Scene.Objects, ObjectConfig{
			Path:         p,
			Position:     [3]float32{x, 0, 0},
			AngularSpeed: 1,
			Scale:        1,
		})
	}
}
