package control

import "math"

// Key is a key identifier as reported by the terminal layer ("up", "w", ...).
type Key string

type KeySet map[Key]bool

// InputState is a per-tick snapshot of the pilot's hardware.
type InputState struct {
	Held             KeySet
	GamepadConnected bool
	// Axes in [-1, 1], ordered roll, pitch, yaw, throttle.
	Axes [4]float64
}

// InputDevice is polled once per tick by the Mixer.
type InputDevice interface {
	Poll() InputState
}

// KeyPair binds the increase and decrease key of a channel.
type KeyPair struct {
	Increase Key `yaml:"increase"`
	Decrease Key `yaml:"decrease"`
}

type KeyMap struct {
	Roll     KeyPair `yaml:"roll"`
	Pitch    KeyPair `yaml:"pitch"`
	Yaw      KeyPair `yaml:"yaw"`
	Throttle KeyPair `yaml:"throttle"`
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Roll:     KeyPair{Increase: "up", Decrease: "down"},
		Pitch:    KeyPair{Increase: "right", Decrease: "left"},
		Yaw:      KeyPair{Increase: "a", Decrease: "d"},
		Throttle: KeyPair{Increase: "w", Decrease: "s"},
	}
}

func (k KeyMap) Pair(a Axis) KeyPair {
	switch a {
	case Roll:
		return k.Roll
	case Pitch:
		return k.Pitch
	case Yaw:
		return k.Yaw
	default:
		return k.Throttle
	}
}

// Bound reports whether key drives any channel.
func (k KeyMap) Bound(key Key) bool {
	for _, a := range Axes {
		p := k.Pair(a)
		if p.Increase == key || p.Decrease == key {
			return true
		}
	}
	return false
}

// GamepadLayout picks the four channel axes out of a device axis list.
type GamepadLayout struct {
	Roll     int `yaml:"roll"`
	Pitch    int `yaml:"pitch"`
	Yaw      int `yaml:"yaw"`
	Throttle int `yaml:"throttle"`
}

// DefaultGamepadLayout matches the common twin-stick layout where the
// throttle sits on the right trigger axis.
func DefaultGamepadLayout() GamepadLayout {
	return GamepadLayout{Roll: 4, Pitch: 3, Yaw: 0, Throttle: 5}
}

// Map selects the channel axes from raw. Indices outside raw read as NaN,
// which the mixer treats as idle.
func (l GamepadLayout) Map(raw []float64) [4]float64 {
	pick := func(i int) float64 {
		if i < 0 || i >= len(raw) {
			return math.NaN()
		}
		return raw[i]
	}
	return [4]float64{pick(l.Roll), pick(l.Pitch), pick(l.Yaw), pick(l.Throttle)}
}
