package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/physics"
)

var (
	ErrNotInitialized   = errors.New("sim: simulation not initialized")
	ErrAlreadyRunning   = errors.New("sim: simulation already running")
	ErrInvalidBody      = errors.New("sim: invalid body spec")
	ErrReadinessTimeout = errors.New("sim: timed out waiting for drone body")
)

// Config holds the flight tunables. Every field has a default in DefaultConfig.
type Config struct {
	Gravity     float64    `yaml:"gravity"`
	Mass        float64    `yaml:"mass"`
	HalfExtents mgl64.Vec3 `yaml:"half_extents"`

	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
	Friction       float64 `yaml:"friction"`

	DragCoefficient float64 `yaml:"drag_coefficient"`
	FrontalArea     float64 `yaml:"frontal_area"`
	AirDensity      float64 `yaml:"air_density"`

	MaxThrust      float64 `yaml:"max_thrust"`
	TorqueStrength float64 `yaml:"torque_strength"`

	MaxLinearVelocity  float64 `yaml:"max_linear_velocity"`
	MaxAngularVelocity float64 `yaml:"max_angular_velocity"`

	SubSteps      int     `yaml:"sub_steps"`
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:            physics.DefaultGravity,
		Mass:               physics.DefaultMass,
		HalfExtents:        physics.DefaultHalfExtents,
		LinearDamping:      physics.DefaultLinearDamping,
		AngularDamping:     physics.DefaultAngularDamping,
		Friction:           physics.DefaultFriction,
		DragCoefficient:    0.5,
		FrontalArea:        0.01,
		AirDensity:         1.225,
		MaxThrust:          2 * physics.HoverThrust(physics.DefaultMass, physics.DefaultGravity),
		TorqueStrength:     0.5,
		MaxLinearVelocity:  50,
		MaxAngularVelocity: 10,
		SubSteps:           physics.DefaultSubSteps,
		MaxFrameDelta:      1.0 / 20,
	}
}

func (c Config) Validate() error {
	positive := map[string]float64{
		"gravity":              c.Gravity,
		"mass":                 c.Mass,
		"max_thrust":           c.MaxThrust,
		"max_linear_velocity":  c.MaxLinearVelocity,
		"max_angular_velocity": c.MaxAngularVelocity,
		"max_frame_delta":      c.MaxFrameDelta,
	}
	for name, v := range positive {
		if !dynamo.Finite(v) || v <= 0 {
			return dynamo.ParamError(name, v)
		}
	}
	nonNegative := map[string]float64{
		"drag_coefficient": c.DragCoefficient,
		"frontal_area":     c.FrontalArea,
		"air_density":      c.AirDensity,
		"torque_strength":  c.TorqueStrength,
		"friction":         c.Friction,
	}
	for name, v := range nonNegative {
		if !dynamo.Finite(v) || v < 0 {
			return dynamo.ParamError(name, v)
		}
	}
	for name, v := range map[string]float64{"linear_damping": c.LinearDamping, "angular_damping": c.AngularDamping} {
		if !dynamo.Finite(v) || v < 0 || v > 1 {
			return dynamo.ParamError(name, v)
		}
	}
	if c.SubSteps < 1 {
		return fmt.Errorf("%w: sub_steps=%d", dynamo.ErrParameterBounds, c.SubSteps)
	}
	return nil
}

// BackendSettings returns the physics settings matching this config.
func (c Config) BackendSettings() physics.Settings {
	s := physics.DefaultSettings()
	s.Gravity = c.Gravity
	s.SubSteps = c.SubSteps
	return s
}

// HoverThrottle is the normalized throttle whose thrust balances gravity.
func (c Config) HoverThrottle() float64 {
	return physics.HoverThrust(c.Mass, c.Gravity) / c.MaxThrust
}

// BodySpec is what the asset collaborator supplies once at startup.
type BodySpec struct {
	Pose        physics.Pose
	HalfExtents mgl64.Vec3
}

// DefaultBodySpec places the drone at spawn facing -Z.
func DefaultBodySpec(spawn mgl64.Vec3) BodySpec {
	return BodySpec{
		Pose: physics.Pose{
			Position:    spawn,
			Orientation: mgl64.QuatRotate(mgl64.DegToRad(180), physics.AxisUp),
		},
		HalfExtents: physics.DefaultHalfExtents,
	}
}

type State int

const (
	Uninitialized State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "uninitialized"
}

// Stats are the per-tick anomaly counters.
type Stats struct {
	Steps           uint64 `json:"steps"`
	PoseDiscards    uint64 `json:"pose_discards"`
	LinearClamps    uint64 `json:"linear_clamps"`
	AngularClamps   uint64 `json:"angular_clamps"`
	FrameClamps     uint64 `json:"frame_clamps"`
	SkippedFrames   uint64 `json:"skipped_frames"`
	DragSkips       uint64 `json:"drag_skips"`
	GroundContacts  uint64 `json:"ground_contacts"`
	SanitizedInputs uint64 `json:"sanitized_inputs"`
}

// Frame is the published outcome of one tick.
type Frame struct {
	Tick            int              `json:"tick"`
	T               float64          `json:"t"`
	Dt              float64          `json:"dt"`
	Position        mgl64.Vec3       `json:"position"`
	Orientation     mgl64.Quat       `json:"orientation"`
	LinearVelocity  mgl64.Vec3       `json:"linear_velocity"`
	AngularVelocity mgl64.Vec3       `json:"angular_velocity"`
	Channels        control.Channels `json:"channels"`
	Contact         bool             `json:"contact"`
	Energy          float64          `json:"energy"`
}

func (f Frame) Pose() physics.Pose {
	return physics.Pose{Position: f.Position, Orientation: f.Orientation}
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

// RunConfig drives a headless fixed-step run.
type RunConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	// RecordEvery keeps one frame out of N in the result; 0 or 1 keeps all.
	RecordEvery int `yaml:"record_every"`
}

func DefaultRunConfig() RunConfig {
	return RunConfig{Dt: 1.0 / 60, Duration: 10, RecordEvery: 1}
}

type Result struct {
	Frames   []Frame            `json:"frames"`
	Metrics  map[string]float64 `json:"metrics"`
	Stats    Stats              `json:"stats"`
	Ticks    int                `json:"ticks"`
	Duration float64            `json:"duration"`
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
