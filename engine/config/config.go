// Package config loads the corridor runtime configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-corridor/common"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when Load is given an empty path.
const EnvConfigPath = "CORRIDOR_CONFIG"

// Config is the root configuration document.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Frame      FrameConfig      `yaml:"frame"`
	Camera     CameraConfig     `yaml:"camera"`
	World      WorldConfig      `yaml:"world"`
	Control    ControlConfig    `yaml:"control"`
	Capture    CaptureConfig    `yaml:"capture"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Style      StyleConfig      `yaml:"style"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// WindowConfig sets the window title and initial client size.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig selects the rendering backend. Backend is "wgpu" or "headless".
type RendererConfig struct {
	Backend string `yaml:"backend"`
	VSync   *bool  `yaml:"vsync"`
}

// FrameConfig controls the Frame Scheduler. TimeScale converts milliseconds to shader time units.
type FrameConfig struct {
	RefreshHz float64 `yaml:"refresh_hz"`
	TimeScale float32 `yaml:"time_scale"`
	Profile   bool    `yaml:"profile"`
}

// CameraConfig sets the rail camera projection and starting position. StartZ and Height may be explicitly zero.
type CameraConfig struct {
	FovDegrees float32  `yaml:"fov_degrees"`
	Aspect     float32  `yaml:"aspect"`
	Near       float32  `yaml:"near"`
	Far        float32  `yaml:"far"`
	StartZ     *float32 `yaml:"start_z"`
	Height     *float32 `yaml:"height"`
}

// WorldConfig controls the World Streamer. RetainBehind of 0 disables eviction.
type WorldConfig struct {
	LaneOffset   float32 `yaml:"lane_offset"`
	Step         float32 `yaml:"step"`
	InitialSteps int     `yaml:"initial_steps"`
	MinHeight    int     `yaml:"min_height"`
	MaxHeight    int     `yaml:"max_height"`
	Seed         int64   `yaml:"seed"`
	RetainBehind float32 `yaml:"retain_behind"`
}

// ControlConfig holds the Control Loop decision thresholds. Low and High may be explicitly zero.
type ControlConfig struct {
	Low         *float64 `yaml:"low"`
	High        *float64 `yaml:"high"`
	CameraStep  float32 `yaml:"camera_step"`
	ExtendEvery int     `yaml:"extend_every"`
}

// CaptureConfig selects the capture source. Source is "v4l2" or "pattern".
type CaptureConfig struct {
	Source string  `yaml:"source"`
	Device string  `yaml:"device"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// ClassifierConfig selects the classifier. Kind is "remote", "linear" or "scripted".
type ClassifierConfig struct {
	Kind           string    `yaml:"kind"`
	URL            string    `yaml:"url"`
	Model          string    `yaml:"model"`
	ReadyTimeoutMS int       `yaml:"ready_timeout_ms"`
	Values         []float64 `yaml:"values"`
	Loop           bool      `yaml:"loop"`
	IntervalMS     int       `yaml:"interval_ms"`
}

// StyleConfig configures the shader noise source. An empty NoiseTexture generates procedural noise.
type StyleConfig struct {
	NoiseTexture string `yaml:"noise_texture"`
	NoiseSize    int    `yaml:"noise_size"`
	NoiseSeed    int64  `yaml:"noise_seed"`
}

// MetricsConfig enables the Prometheus listener when Listen is non-empty.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

var (
	validBackends    = map[string]bool{"wgpu": true, "headless": true}
	validSources     = map[string]bool{"v4l2": true, "pattern": true}
	validClassifiers = map[string]bool{"remote": true, "linear": true, "scripted": true}
)

// Default returns the built-in configuration: a 1280x720 window and a corridor seeded ten steps deep.
//
// Returns:
//   - *Config: a fully populated configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file and fills unspecified fields with defaults.
// If path is empty, the CORRIDOR_CONFIG environment variable is consulted; if that is also empty
// the defaults are returned.
//
// Parameters:
//   - path: the YAML file to read (may be empty)
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: an error if the file cannot be read, parsed, or fails validation
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and validates the result.
//
// Parameters:
//   - data: raw YAML bytes
//
// Returns:
//   - *Config: the parsed configuration
//   - error: an error if decoding or validation fails
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot repair.
//
// Returns:
//   - error: a joined error describing every violation, or nil
func (c *Config) Validate() error {
	var errs []error
	if c.Control.Low != nil && c.Control.High != nil && *c.Control.Low > *c.Control.High {
		errs = append(errs, fmt.Errorf("control.low (%v) must not exceed control.high (%v)", *c.Control.Low, *c.Control.High))
	}
	if c.World.MinHeight > c.World.MaxHeight {
		errs = append(errs, fmt.Errorf("world.min_height (%d) must not exceed world.max_height (%d)", c.World.MinHeight, c.World.MaxHeight))
	}
	if c.World.Step <= 0 {
		errs = append(errs, fmt.Errorf("world.step must be positive, got %v", c.World.Step))
	}
	if c.Control.CameraStep <= 0 {
		errs = append(errs, fmt.Errorf("control.camera_step must be positive, got %v", c.Control.CameraStep))
	}
	if c.Control.ExtendEvery <= 0 {
		errs = append(errs, fmt.Errorf("control.extend_every must be positive, got %d", c.Control.ExtendEvery))
	}
	if c.World.RetainBehind < 0 {
		errs = append(errs, fmt.Errorf("world.retain_behind must not be negative, got %v", c.World.RetainBehind))
	}
	if !validBackends[c.Renderer.Backend] {
		errs = append(errs, fmt.Errorf("unknown renderer.backend %q", c.Renderer.Backend))
	}
	if !validSources[c.Capture.Source] {
		errs = append(errs, fmt.Errorf("unknown capture.source %q", c.Capture.Source))
	}
	if !validClassifiers[c.Classifier.Kind] {
		errs = append(errs, fmt.Errorf("unknown classifier.kind %q", c.Classifier.Kind))
	}
	if c.Classifier.Kind == "remote" && c.Classifier.URL == "" {
		errs = append(errs, errors.New("classifier.url is required for the remote classifier"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// applyDefaults fills zero-valued fields. Pointer fields distinguish an explicit zero from "unset".
func (c *Config) applyDefaults() {
	c.Window.Title = common.Coalesce(c.Window.Title, "Corridor")
	c.Window.Width = common.Coalesce(c.Window.Width, 1280)
	c.Window.Height = common.Coalesce(c.Window.Height, 720)

	c.Renderer.Backend = common.Coalesce(c.Renderer.Backend, "wgpu")
	if c.Renderer.VSync == nil {
		vsync := true
		c.Renderer.VSync = &vsync
	}

	c.Frame.RefreshHz = common.Coalesce(c.Frame.RefreshHz, 60)
	c.Frame.TimeScale = common.Coalesce(c.Frame.TimeScale, 0.0001)

	c.Camera.FovDegrees = common.Coalesce(c.Camera.FovDegrees, 40)
	c.Camera.Aspect = common.Coalesce(c.Camera.Aspect, 2)
	c.Camera.Near = common.Coalesce(c.Camera.Near, 0.1)
	c.Camera.Far = common.Coalesce(c.Camera.Far, 1000)
	if c.Camera.StartZ == nil {
		z := float32(2)
		c.Camera.StartZ = &z
	}
	if c.Camera.Height == nil {
		y := float32(0.5)
		c.Camera.Height = &y
	}

	c.World.LaneOffset = common.Coalesce(c.World.LaneOffset, 1.5)
	c.World.Step = common.Coalesce(c.World.Step, 1.5)
	c.World.InitialSteps = common.Coalesce(c.World.InitialSteps, 10)
	c.World.MinHeight = common.Coalesce(c.World.MinHeight, 1)
	c.World.MaxHeight = common.Coalesce(c.World.MaxHeight, 2)

	if c.Control.Low == nil {
		low := 0.4
		c.Control.Low = &low
	}
	if c.Control.High == nil {
		high := 0.6
		c.Control.High = &high
	}
	c.Control.CameraStep = common.Coalesce(c.Control.CameraStep, 0.1)
	c.Control.ExtendEvery = common.Coalesce(c.Control.ExtendEvery, 10)

	c.Capture.Source = common.Coalesce(c.Capture.Source, "v4l2")
	c.Capture.Device = common.Coalesce(c.Capture.Device, "/dev/video0")
	c.Capture.Width = common.Coalesce(c.Capture.Width, 640)
	c.Capture.Height = common.Coalesce(c.Capture.Height, 480)
	c.Capture.FPS = common.Coalesce(c.Capture.FPS, 30)

	c.Classifier.Kind = common.Coalesce(c.Classifier.Kind, "remote")
	c.Classifier.URL = common.Coalesce(c.Classifier.URL, "ws://127.0.0.1:8765/predict")
	c.Classifier.Model = common.Coalesce(c.Classifier.Model, "models/model.json")
	c.Classifier.ReadyTimeoutMS = common.Coalesce(c.Classifier.ReadyTimeoutMS, 30000)

	c.Style.NoiseSize = common.Coalesce(c.Style.NoiseSize, 64)
}
