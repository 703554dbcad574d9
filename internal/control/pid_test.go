package control

import (
	"errors"
	"testing"

	"github.com/san-kum/dronesim/internal/dynamo"
)

func TestPIDProportional(t *testing.T) {
	p := NewPID(2, 0, 0, 10)
	if got := p.Compute(4, 0); got != 12 {
		t.Errorf("Compute() = %v, want 12", got)
	}
	if got := p.Compute(4, 0.1); got != 12 {
		t.Errorf("Compute() = %v, want 12", got)
	}
}

func TestPIDLimit(t *testing.T) {
	p := NewPID(10, 1, 0, 100)
	p.Limit = 0.5
	for i := 0; i < 10; i++ {
		if u := p.Compute(0, float64(i)); u != 0.5 {
			t.Fatalf("Compute() = %v, want saturated 0.5", u)
		}
	}
	if p.integral != 0 {
		t.Errorf("integral grew while saturated: %v", p.integral)
	}
}

func TestPIDReset(t *testing.T) {
	p := NewPID(1, 1, 1, 1)
	p.Compute(0, 0)
	p.Compute(0, 1)
	p.Reset()
	if p.integral != 0 || !p.first {
		t.Errorf("Reset() left state integral=%v first=%v", p.integral, p.first)
	}
}

func TestPIDSetParam(t *testing.T) {
	p := NewPID(1, 0, 0, 0)
	if err := p.SetParam("Kd", 0.3); err != nil {
		t.Fatalf("SetParam() error = %v", err)
	}
	if p.GetParams()["Kd"] != 0.3 {
		t.Errorf("Kd = %v, want 0.3", p.GetParams()["Kd"])
	}
	if err := p.SetParam("gain", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("SetParam(unknown) error = %v", err)
	}
}

func TestAltitudeHoldPoll(t *testing.T) {
	h := NewAltitudeHold(10, 0.5)

	h.Observe(0, 10)
	in := h.Poll()
	if !in.GamepadConnected {
		t.Fatal("altitude hold should report a gamepad")
	}
	if in.Axes != [4]float64{0, 0, 0, 0} {
		t.Errorf("on target axes = %v, want hover", in.Axes)
	}

	h.Observe(1.0/60, 0)
	if got := h.Poll().Axes[3]; got <= 0 {
		t.Errorf("below target throttle axis = %v, want > 0", got)
	}

	if err := h.SetParam("Hover", 2); err == nil {
		t.Error("SetParam(Hover=2) should fail")
	}
}
