package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Configurable is implemented by components with live-tunable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func FiniteVec(v mgl64.Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}

func FiniteQuat(q mgl64.Quat) bool {
	return Finite(q.W) && FiniteVec(q.V)
}

// ClampLength rescales v so that |v| <= max. The second result reports
// whether rescaling happened.
func ClampLength(v mgl64.Vec3, max float64) (mgl64.Vec3, bool) {
	l := v.Len()
	if l <= max || l == 0 {
		return v, false
	}
	return v.Mul(max / l), true
}

// Clamp limits x to [lo, hi]. NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
