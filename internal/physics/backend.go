package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/dynamo"
)

// ErrBackendUnavailable is returned when the backend cannot be loaded.
var ErrBackendUnavailable = errors.New("physics: backend unavailable")

const (
	DefaultGravity        = 9.81
	DefaultSubSteps       = 10
	DefaultSleepThreshold = 0.05
	DefaultSleepTime      = 1.0
)

// Settings configure every world created by a backend.
type Settings struct {
	// Gravity is the magnitude of the downward (-Y) acceleration.
	Gravity  float64 `yaml:"gravity"`
	SubSteps int     `yaml:"sub_steps"`

	// Bodies that are not always active fall asleep after staying below
	// SleepThreshold (m/s and rad/s) for SleepTime seconds.
	SleepThreshold float64 `yaml:"sleep_threshold"`
	SleepTime      float64 `yaml:"sleep_time"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:        DefaultGravity,
		SubSteps:       DefaultSubSteps,
		SleepThreshold: DefaultSleepThreshold,
		SleepTime:      DefaultSleepTime,
	}
}

// Backend is a loaded physics engine handle.
type Backend struct {
	settings Settings
}

// Load validates settings and returns a ready backend.
func Load(s Settings) (*Backend, error) {
	if !dynamo.Finite(s.Gravity) {
		return nil, fmt.Errorf("%w: gravity must be finite, got %f", ErrBackendUnavailable, s.Gravity)
	}
	if s.SubSteps < 1 {
		return nil, fmt.Errorf("%w: sub-steps must be >= 1, got %d", ErrBackendUnavailable, s.SubSteps)
	}
	if s.SleepThreshold < 0 || s.SleepTime < 0 {
		return nil, fmt.Errorf("%w: sleep settings must be non-negative", ErrBackendUnavailable)
	}
	return &Backend{settings: s}, nil
}

func (b *Backend) Settings() Settings {
	return b.settings
}

// NewWorld creates an empty world with the backend's gravity and solver settings.
func (b *Backend) NewWorld() *World {
	return &World{
		gravity:        mgl64.Vec3{0, -b.settings.Gravity, 0},
		subSteps:       b.settings.SubSteps,
		sleepThreshold: b.settings.SleepThreshold,
		sleepTime:      b.settings.SleepTime,
	}
}
