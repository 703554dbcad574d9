package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/dynamo"
)

var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

// Pose is a position and unit orientation in world space.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func IdentityPose(position mgl64.Vec3) Pose {
	return Pose{Position: position, Orientation: mgl64.QuatIdent()}
}

func (p Pose) IsFinite() bool {
	return dynamo.FiniteVec(p.Position) && dynamo.FiniteQuat(p.Orientation)
}

// ToWorld rotates a body-frame direction into world space.
func (p Pose) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return p.Orientation.Rotate(local)
}

// ToLocal rotates a world direction into the body frame.
func (p Pose) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return p.Orientation.Conjugate().Rotate(world)
}

func (p Pose) Up() mgl64.Vec3      { return p.ToWorld(AxisUp) }
func (p Pose) Forward() mgl64.Vec3 { return p.ToWorld(AxisForward) }
func (p Pose) Right() mgl64.Vec3   { return p.ToWorld(AxisRight) }
