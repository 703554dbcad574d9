package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/sim"
)

// Upright is the fraction of frames whose tilt from vertical stays within
// a threshold angle.
type Upright struct {
	name       string
	threshold  float64 // radians
	violations int
	samples    int
}

func NewUpright(thresholdDeg float64) *Upright {
	return &Upright{
		name:      "upright",
		threshold: mgl64.DegToRad(thresholdDeg),
	}
}

func (s *Upright) Name() string {
	return s.name
}

func (s *Upright) Observe(f sim.Frame) {
	s.samples++
	if Tilt(f) > s.threshold {
		s.violations++
	}
}

func (s *Upright) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Upright) Reset() {
	s.violations = 0
	s.samples = 0
}

// Tilt returns the angle between the body up axis and world up.
func Tilt(f sim.Frame) float64 {
	up := f.Pose().Up()
	return math.Acos(math.Max(-1, math.Min(1, up.Y())))
}

// Altitude tracks the highest position reached.
type Altitude struct {
	max     float64
	samples int
}

func NewAltitude() *Altitude { return &Altitude{} }

func (a *Altitude) Name() string { return "max_altitude" }

func (a *Altitude) Observe(f sim.Frame) {
	if a.samples == 0 || f.Position.Y() > a.max {
		a.max = f.Position.Y()
	}
	a.samples++
}

func (a *Altitude) Value() float64 { return a.max }

func (a *Altitude) Reset() {
	a.max = 0
	a.samples = 0
}

// AltitudeError is the mean absolute distance from a target altitude.
type AltitudeError struct {
	Target  float64
	sum     float64
	samples int
}

func NewAltitudeError(target float64) *AltitudeError {
	return &AltitudeError{Target: target}
}

func (a *AltitudeError) Name() string { return "altitude_error" }

func (a *AltitudeError) Observe(f sim.Frame) {
	a.sum += math.Abs(f.Position.Y() - a.Target)
	a.samples++
}

func (a *AltitudeError) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *AltitudeError) Reset() {
	a.sum = 0
	a.samples = 0
}
