package control

import (
	"fmt"

	"github.com/san-kum/dronesim/internal/dynamo"
)

// Axis identifies one control channel.
type Axis int

const (
	Roll Axis = iota
	Pitch
	Yaw
	Throttle
)

// Axes lists every channel in gamepad order.
var Axes = [4]Axis{Roll, Pitch, Yaw, Throttle}

func (a Axis) String() string {
	switch a {
	case Roll:
		return "roll"
	case Pitch:
		return "pitch"
	case Yaw:
		return "yaw"
	case Throttle:
		return "throttle"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Values holds one scalar per channel.
type Values struct {
	Roll     float64 `json:"roll" yaml:"roll"`
	Pitch    float64 `json:"pitch" yaml:"pitch"`
	Yaw      float64 `json:"yaw" yaml:"yaw"`
	Throttle float64 `json:"throttle" yaml:"throttle"`
}

func (v Values) Get(a Axis) float64 {
	switch a {
	case Roll:
		return v.Roll
	case Pitch:
		return v.Pitch
	case Yaw:
		return v.Yaw
	case Throttle:
		return v.Throttle
	}
	return 0
}

// With returns a copy of v with channel a set to x.
func (v Values) With(a Axis, x float64) Values {
	v.set(a, x)
	return v
}

func (v *Values) set(a Axis, x float64) {
	switch a {
	case Roll:
		v.Roll = x
	case Pitch:
		v.Pitch = x
	case Yaw:
		v.Yaw = x
	case Throttle:
		v.Throttle = x
	}
}

// Channels carries the raw and normalized view of the same pilot command.
type Channels struct {
	Raw        Values `json:"raw"`
	Normalized Values `json:"normalized"`
}

// ChannelRange is the raw scale of one channel. Centered channels map to
// [-1, 1] around the midpoint of [Min, Max]; the others map to [0, 1] from
// Min. Idle is the value the keyboard path ramps back to on release.
type ChannelRange struct {
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	Idle     float64 `yaml:"idle"`
	Centered bool    `yaml:"centered"`
}

func (r ChannelRange) mid() float64  { return (r.Min + r.Max) / 2 }
func (r ChannelRange) half() float64 { return (r.Max - r.Min) / 2 }

func (r ChannelRange) Clamp(raw float64) float64 {
	return dynamo.Clamp(raw, r.Min, r.Max)
}

// Normalize maps a raw value onto [-1, 1] or [0, 1].
func (r ChannelRange) Normalize(raw float64) float64 {
	if r.Centered {
		return (raw - r.mid()) / r.half()
	}
	return (raw - r.Min) / (r.Max - r.Min)
}

// Denormalize is the inverse of Normalize.
func (r ChannelRange) Denormalize(n float64) float64 {
	if r.Centered {
		return r.mid() + n*r.half()
	}
	return r.Min + n*(r.Max-r.Min)
}

// FromAxis maps a gamepad axis in [-1, 1] onto the full raw range. A
// non-finite axis reads as Idle.
func (r ChannelRange) FromAxis(v float64) float64 {
	if !dynamo.Finite(v) {
		return r.Clamp(r.Idle)
	}
	return r.Clamp(r.Min + (v+1)*r.half())
}

func (r ChannelRange) validate(name string) error {
	if !dynamo.Finite(r.Min) || !dynamo.Finite(r.Max) || r.Min >= r.Max {
		return fmt.Errorf("%s: %w: range [%g, %g]", name, dynamo.ErrParameterBounds, r.Min, r.Max)
	}
	if !dynamo.Finite(r.Idle) || r.Idle < r.Min || r.Idle > r.Max {
		return fmt.Errorf("%s: %w: idle %g outside [%g, %g]", name, dynamo.ErrParameterBounds, r.Idle, r.Min, r.Max)
	}
	return nil
}
