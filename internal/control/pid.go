package control

import (
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
)

type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	// Output is clamped to [-Limit, Limit]; the integral stops growing
	// while the output is saturated.
	Limit float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Limit:  math.Inf(1),
		first:  true,
	}
}

// Compute returns the control output for a measurement taken at time t.
func (p *PID) Compute(measured, t float64) float64 {
	err := p.Target - measured

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.clamp(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.clamp(p.Kp*err + p.Ki*p.integral)
	}

	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	integral := p.integral + err*dt
	u := p.Kp*err + p.Ki*integral + p.Kd*derivative
	if math.Abs(u) < p.Limit {
		p.integral = integral
	}
	return p.clamp(u)
}

func (p *PID) clamp(u float64) float64 {
	return dynamo.Clamp(u, -p.Limit, p.Limit)
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	if !dynamo.Finite(value) {
		return dynamo.ParamError(name, value)
	}
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return nil
}

var _ dynamo.Configurable = (*PID)(nil)

// AltitudeHold is an autopilot that drives the throttle axis of a virtual
// gamepad to hold a target altitude. Roll, pitch and yaw stay centered.
// Feed it measurements with Observe after every tick.
type AltitudeHold struct {
	PID *PID
	// Hover is the normalized throttle that balances gravity.
	Hover float64

	altitude float64
	t        float64
}

func NewAltitudeHold(target, hover float64) *AltitudeHold {
	pid := NewPID(0.1, 0.01, 0.1, target)
	pid.Limit = 0.5
	return &AltitudeHold{PID: pid, Hover: hover}
}

// Observe records the altitude measured at time t.
func (h *AltitudeHold) Observe(t, altitude float64) {
	h.t = t
	h.altitude = altitude
}

func (h *AltitudeHold) Poll() InputState {
	throttle := dynamo.Clamp(h.Hover+h.PID.Compute(h.altitude, h.t), 0, 1)
	return InputState{
		GamepadConnected: true,
		Axes:             [4]float64{0, 0, 0, 2*throttle - 1},
	}
}

func (h *AltitudeHold) GetParams() map[string]float64 {
	params := h.PID.GetParams()
	params["Hover"] = h.Hover
	return params
}

func (h *AltitudeHold) SetParam(name string, value float64) error {
	if name == "Hover" {
		if !dynamo.Finite(value) || value < 0 || value > 1 {
			return dynamo.ParamError(name, value)
		}
		h.Hover = value
		return nil
	}
	return h.PID.SetParam(name, value)
}
