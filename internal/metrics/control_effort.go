package metrics

import (
	"math"

	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/sim"
)

// ControlEffort is the mean sum of absolute normalized channel values.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(f sim.Frame) {
	for _, a := range control.Axes {
		c.sum += math.Abs(f.Channels.Normalized.Get(a))
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Default returns the metric set attached to every scenario run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewUpright(30),
		NewControlEffort(),
		NewAltitude(),
	}
}
