package control

import (
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
)

const (
	DefaultRampRate = 25.0
	RawMax          = 3000.0
	RawCenter       = 1500.0
)

// Config is the mixer tuning. Roll, pitch and yaw are centered channels,
// throttle is zero-based.
type Config struct {
	Roll     ChannelRange  `yaml:"roll"`
	Pitch    ChannelRange  `yaml:"pitch"`
	Yaw      ChannelRange  `yaml:"yaw"`
	Throttle ChannelRange  `yaml:"throttle"`
	RampRate float64       `yaml:"ramp_rate"`
	Keys     KeyMap        `yaml:"keys"`
	Gamepad  GamepadLayout `yaml:"gamepad"`
}

// DefaultConfig uses the 0..3000 raw scale with mid-stick at 1500 and a
// throttle that idles at 0.
func DefaultConfig() Config {
	centered := ChannelRange{Min: 0, Max: RawMax, Idle: RawCenter, Centered: true}
	return Config{
		Roll:     centered,
		Pitch:    centered,
		Yaw:      centered,
		Throttle: ChannelRange{Min: 0, Max: RawMax, Idle: 0},
		RampRate: DefaultRampRate,
		Keys:     DefaultKeyMap(),
		Gamepad:  DefaultGamepadLayout(),
	}
}

// NarrowConfig uses the 1000..2000 raw convention.
func NarrowConfig() Config {
	cfg := DefaultConfig()
	centered := ChannelRange{Min: 1000, Max: 2000, Idle: 1500, Centered: true}
	cfg.Roll, cfg.Pitch, cfg.Yaw = centered, centered, centered
	cfg.Throttle = ChannelRange{Min: 1000, Max: 2000, Idle: 1000}
	cfg.RampRate = 25.0 / 3
	return cfg
}

func (c Config) Range(a Axis) ChannelRange {
	switch a {
	case Roll:
		return c.Roll
	case Pitch:
		return c.Pitch
	case Yaw:
		return c.Yaw
	default:
		return c.Throttle
	}
}

func (c Config) Validate() error {
	for _, a := range Axes {
		if err := c.Range(a).validate(a.String()); err != nil {
			return err
		}
	}
	if !dynamo.Finite(c.RampRate) || c.RampRate <= 0 {
		return fmt.Errorf("ramp_rate: %w", dynamo.ParamError("ramp_rate", c.RampRate))
	}
	return nil
}

// Mixer produces control channels from an input device.
type Mixer struct {
	cfg    Config
	device InputDevice

	raw     Values
	held    KeySet
	gamepad bool
}

// NewMixer starts every channel at its idle value. A nil device is
// treated as Idle.
func NewMixer(cfg Config, device InputDevice) (*Mixer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if device == nil {
		device = Idle{}
	}
	m := &Mixer{cfg: cfg, device: device}
	m.Reset()
	return m, nil
}

func (m *Mixer) Config() Config { return m.cfg }

// SetDevice swaps the input source. Raw values carry over.
func (m *Mixer) SetDevice(d InputDevice) {
	if d == nil {
		d = Idle{}
	}
	m.device = d
}

// Reset puts every channel back at its idle value.
func (m *Mixer) Reset() {
	for _, a := range Axes {
		r := m.cfg.Range(a)
		m.raw.set(a, r.Clamp(r.Idle))
	}
	m.held = nil
	m.gamepad = false
}

// Update polls the device once and advances the channels by one tick.
func (m *Mixer) Update() Channels {
	in := m.device.Poll()
	m.held = in.Held
	m.gamepad = in.GamepadConnected

	if in.GamepadConnected {
		for i, a := range Axes {
			m.raw.set(a, m.cfg.Range(a).FromAxis(in.Axes[i]))
		}
		return m.Channels()
	}

	for _, a := range Axes {
		m.raw.set(a, m.ramp(a, in.Held))
	}
	return m.Channels()
}

func (m *Mixer) ramp(a Axis, held KeySet) float64 {
	r := m.cfg.Range(a)
	keys := m.cfg.Keys.Pair(a)
	cur := m.raw.Get(a)
	if !dynamo.Finite(cur) {
		cur = r.Idle
	}

	up, down := held[keys.Increase], held[keys.Decrease]
	switch {
	case up && down:
		return r.Clamp(cur)
	case up:
		return r.Clamp(cur + m.cfg.RampRate)
	case down:
		return r.Clamp(cur - m.cfg.RampRate)
	}

	diff := r.Idle - cur
	if math.Abs(diff) <= m.cfg.RampRate {
		return r.Clamp(r.Idle)
	}
	return r.Clamp(cur + math.Copysign(m.cfg.RampRate, diff))
}

// Channels returns a copy of the current raw and normalized values.
func (m *Mixer) Channels() Channels {
	var n Values
	for _, a := range Axes {
		n.set(a, m.cfg.Range(a).Normalize(m.raw.Get(a)))
	}
	return Channels{Raw: m.raw, Normalized: n}
}

// GamepadActive reports whether the last update used the gamepad path.
func (m *Mixer) GamepadActive() bool { return m.gamepad }

// Held reports whether key was held at the last update.
func (m *Mixer) Held(key Key) bool { return m.held[key] }
