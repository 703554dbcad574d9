package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/camera"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/physics"
	"github.com/san-kum/dronesim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSpawnY     = 5.0
	DefaultSpawnYaw   = 180.0
	DefaultFPS        = 60
	DefaultHoldWindow = 150
	DefaultHoldTarget = 10.0
)

// Config is the single YAML document describing a flight session.
type Config struct {
	Scenario string         `yaml:"scenario"`
	Physics  sim.Config     `yaml:"physics"`
	Mixer    control.Config `yaml:"mixer"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Camera   camera.Config  `yaml:"camera"`
	Run      sim.RunConfig  `yaml:"run"`
	Hold     HoldConfig     `yaml:"hold"`
	View     ViewConfig     `yaml:"view"`

	// Model is an optional drone mesh file sizing the body.
	Model string `yaml:"model,omitempty"`
}

type SpawnConfig struct {
	Position mgl64.Vec3 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"` // degrees about +Y
}

// HoldConfig tunes the altitude-hold autopilot.
type HoldConfig struct {
	Target float64 `yaml:"target"`
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
}

type ViewConfig struct {
	FPS int `yaml:"fps"`
	// HoldWindowMS is how long a key counts as held after its last key
	// event. Terminals report key repeats but no key releases.
	HoldWindowMS int    `yaml:"hold_window_ms"`
	Theme        string `yaml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: "drop",
		Physics:  sim.DefaultConfig(),
		Mixer:    control.DefaultConfig(),
		Spawn: SpawnConfig{
			Position: mgl64.Vec3{0, DefaultSpawnY, 0},
			Yaw:      DefaultSpawnYaw,
		},
		Camera: camera.DefaultConfig(),
		Run:    sim.DefaultRunConfig(),
		Hold: HoldConfig{
			Target: DefaultHoldTarget,
			Kp:     0.1,
			Ki:     0.01,
			Kd:     0.1,
		},
		View: ViewConfig{
			FPS:          DefaultFPS,
			HoldWindowMS: DefaultHoldWindow,
			Theme:        "default",
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver overlays the YAML file at path onto a copy of base. Fields the
// file leaves out keep base's values.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if err := c.Mixer.Validate(); err != nil {
		return fmt.Errorf("mixer: %w", err)
	}
	if !dynamo.FiniteVec(c.Spawn.Position) || !dynamo.Finite(c.Spawn.Yaw) {
		return fmt.Errorf("spawn: %w", dynamo.ErrInvalidState)
	}
	if !(c.Run.Dt > 0) || !(c.Run.Duration > 0) {
		return fmt.Errorf("run: %w: dt=%g duration=%g", dynamo.ErrParameterBounds, c.Run.Dt, c.Run.Duration)
	}
	if c.View.FPS <= 0 || c.View.HoldWindowMS <= 0 {
		return fmt.Errorf("view: %w: fps=%d hold_window_ms=%d", dynamo.ErrParameterBounds, c.View.FPS, c.View.HoldWindowMS)
	}
	return nil
}

// Loader returns the asset collaborator for the drone body.
func (c *Config) Loader() ModelLoader {
	return ModelLoader{Path: c.Model, Body: c.BodySpec()}
}

// BodySpec returns the drone body spec at the configured spawn.
func (c *Config) BodySpec() sim.BodySpec {
	return sim.BodySpec{
		Pose: physics.Pose{
			Position:    c.Spawn.Position,
			Orientation: mgl64.QuatRotate(mgl64.DegToRad(c.Spawn.Yaw), physics.AxisUp),
		},
		HalfExtents: c.Physics.HalfExtents,
	}
}

// AltitudeHold builds the autopilot device from the hold settings.
func (c *Config) AltitudeHold() *control.AltitudeHold {
	h := control.NewAltitudeHold(c.Hold.Target, c.Physics.HoverThrottle())
	h.PID.Kp, h.PID.Ki, h.PID.Kd = c.Hold.Kp, c.Hold.Ki, c.Hold.Kd
	return h
}

func (v ViewConfig) HoldWindow() time.Duration {
	return time.Duration(v.HoldWindowMS) * time.Millisecond
}
