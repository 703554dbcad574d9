package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/sim"
)

var (
	ErrUnknownScenario = errors.New("experiment: unknown scenario")
	ErrNoScript        = errors.New("experiment: script scenario needs a script")
)

// Pilot is what flies a scenario: the device the mixer polls and any
// observers that feed it back from the simulation.
type Pilot struct {
	Device    control.InputDevice
	Observers []sim.Observer
}

// Scenario builds a pilot for cfg. It may adjust cfg before the
// simulation is created.
type Scenario struct {
	Name        string
	Description string
	Pilot       func(cfg *config.Config, script *Script) (Pilot, error)
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.Register(Scenario{
		Name:        "drop",
		Description: "no input, the drone falls from spawn",
		Pilot: func(*config.Config, *Script) (Pilot, error) {
			return Pilot{Device: control.Idle{}}, nil
		},
	})
	r.Register(Scenario{
		Name:        "climb",
		Description: "full throttle on the gamepad",
		Pilot: func(*config.Config, *Script) (Pilot, error) {
			pad := control.NewManual()
			pad.ConnectGamepad([4]float64{0, 0, 0, 1})
			return Pilot{Device: pad}, nil
		},
	})
	r.Register(Scenario{
		Name:        "hover",
		Description: "gamepad throttle at the hover point",
		Pilot: func(cfg *config.Config, _ *Script) (Pilot, error) {
			pad := control.NewManual()
			pad.ConnectGamepad([4]float64{0, 0, 0, 2*cfg.Physics.HoverThrottle() - 1})
			return Pilot{Device: pad}, nil
		},
	})
	r.Register(Scenario{
		Name:        "roll",
		Description: "roll key held, throttle idling at hover",
		Pilot: func(cfg *config.Config, _ *Script) (Pilot, error) {
			cfg.Mixer.Throttle.Idle = cfg.Mixer.Throttle.Denormalize(cfg.Physics.HoverThrottle())
			kb := control.NewManual()
			kb.Press(cfg.Mixer.Keys.Roll.Increase)
			return Pilot{Device: kb}, nil
		},
	})
	r.Register(Scenario{
		Name:        "hold",
		Description: "altitude-hold autopilot",
		Pilot: func(cfg *config.Config, _ *Script) (Pilot, error) {
			hold := cfg.AltitudeHold()
			hold.Observe(0, cfg.Spawn.Position.Y())
			obs := sim.ObserverFunc(func(f sim.Frame) { hold.Observe(f.T, f.Position.Y()) })
			return Pilot{Device: hold, Observers: []sim.Observer{obs}}, nil
		},
	})
	r.Register(Scenario{
		Name:        "script",
		Description: "timeline of held keys and gamepad axes from YAML",
		Pilot: func(cfg *config.Config, s *Script) (Pilot, error) {
			if s == nil {
				return Pilot{}, ErrNoScript
			}
			tl := NewTimeline(s, cfg.Mixer.Gamepad)
			return Pilot{Device: tl, Observers: []sim.Observer{tl}}, nil
		},
	})

	return r
}

func (r *Registry) Register(s Scenario) {
	r.scenarios[s.Name] = s
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s, nil
}

func (r *Registry) List() []Scenario {
	list := make([]Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
