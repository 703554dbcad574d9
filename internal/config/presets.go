package config

import (
	"sort"

	"github.com/san-kum/dronesim/internal/control"
)

// Presets are named tuning variants layered over DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	// 1000..2000 raw channel convention
	"narrow": func(c *Config) {
		c.Mixer = control.NarrowConfig()
	},
	// throttle idles at hover instead of zero
	"hover-neutral": func(c *Config) {
		c.Mixer.Throttle.Idle = c.Mixer.Throttle.Max * c.Physics.HoverThrottle()
	},
	"heavy": func(c *Config) {
		c.Physics.Mass = 0.5
		c.Physics.MaxThrust = 2 * c.Physics.Mass * c.Physics.Gravity
		c.Physics.TorqueStrength = 0.8
	},
	"arcade": func(c *Config) {
		c.Physics.LinearDamping = 0.3
		c.Physics.AngularDamping = 0.9
		c.Physics.TorqueStrength = 1.0
		c.Mixer.RampRate = 50
	},
	"vacuum": func(c *Config) {
		c.Physics.LinearDamping = 0
		c.Physics.AngularDamping = 0
		c.Physics.DragCoefficient = 0
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
