// Package config loads simulation settings from YAML, layered over embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	ErrInvalidFixedDelta    = errors.New("loop.fixed_delta must be positive")
	ErrInvalidMaxFrameDelta = errors.New("loop.max_frame_delta must be positive")
	ErrInvalidTimeScale     = errors.New("physics.time_scale must not be negative")
	ErrInvalidImpulseModel  = errors.New("physics.impulse_model must be normalized or raw")
	ErrInvalidBlend         = errors.New("animation.blend_duration must be positive")
	ErrInvalidInterpolation = errors.New("animation.interpolation must be linear or eased")
)

// Config holds every tunable of a simulation instance.
type Config struct {
	Loop      LoopConfig      `yaml:"loop"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Animation AnimationConfig `yaml:"animation"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Feed      FeedConfig      `yaml:"feed"`
}

// LoopConfig holds fixed-timestep scheduling parameters (seconds).
type LoopConfig struct {
	FixedDelta     float64       `yaml:"fixed_delta"`
	MaxFrameDelta  float64       `yaml:"max_frame_delta"`
	DriverInterval time.Duration `yaml:"driver_interval"` // Ticker cadence used by headless runs
}

// PhysicsConfig holds world-level physics parameters.
type PhysicsConfig struct {
	Gravity      [3]float64 `yaml:"gravity"`
	TimeScale    float64    `yaml:"time_scale"`
	ImpulseModel string     `yaml:"impulse_model"`
}

// AnimationConfig holds animator defaults.
type AnimationConfig struct {
	BlendDuration float64 `yaml:"blend_duration"`
	Interpolation string  `yaml:"interpolation"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig controls the frame monitor and CSV output.
type TelemetryConfig struct {
	Window int    `yaml:"window"`  // frames averaged by the monitor
	CSVDir string `yaml:"csv_dir"` // empty disables CSV output
}

// FeedConfig controls the read-only websocket frame feed.
type FeedConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	EveryFrames int    `yaml:"every_frames"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads configuration from a YAML file merged over the embedded defaults.
// If path is empty, only the defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Loop.FixedDelta <= 0 {
		errs = append(errs, ErrInvalidFixedDelta)
	}
	if c.Loop.MaxFrameDelta <= 0 {
		errs = append(errs, ErrInvalidMaxFrameDelta)
	}
	if c.Physics.TimeScale < 0 {
		errs = append(errs, ErrInvalidTimeScale)
	}
	switch c.Physics.ImpulseModel {
	case "normalized", "raw":
	default:
		errs = append(errs, ErrInvalidImpulseModel)
	}
	if c.Animation.BlendDuration <= 0 {
		errs = append(errs, ErrInvalidBlend)
	}
	switch c.Animation.Interpolation {
	case "linear", "eased":
	default:
		errs = append(errs, ErrInvalidInterpolation)
	}
	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
