package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultMass           = 0.25
	DefaultLinearDamping  = 0.7
	DefaultAngularDamping = 0.7
	DefaultFriction       = 0.5
)

var (
	DefaultHalfExtents = mgl64.Vec3{0.5, 0.1, 0.5}

	// The ground slab's top face is the plane y = 0.
	GroundHalfExtents = mgl64.Vec3{500, 0.5, 500}
	GroundPosition    = mgl64.Vec3{0, -0.5, 0}
)

// DroneBody returns the body configuration of the pilot-controlled drone.
// The drone never sleeps since pilot input can resume at any time.
func DroneBody(pose Pose, halfExtents mgl64.Vec3) BodyConfig {
	return BodyConfig{
		Name:           "drone",
		Mass:           DefaultMass,
		HalfExtents:    halfExtents,
		Pose:           pose,
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
		Friction:       DefaultFriction,
		AlwaysActive:   true,
	}
}

// GroundBody returns the static ground slab.
func GroundBody() BodyConfig {
	return BodyConfig{
		Name:        "ground",
		HalfExtents: GroundHalfExtents,
		Pose:        IdentityPose(GroundPosition),
		Friction:    DefaultFriction,
	}
}

// HoverThrust is the thrust that exactly balances gravity for mass.
func HoverThrust(mass, gravity float64) float64 {
	return mass * gravity
}

// Energy returns the mechanical energy of b with the ground plane as the
// potential reference.
func Energy(b *Body, gravity float64) float64 {
	return b.KineticEnergy() + b.Mass()*gravity*b.Pose().Position.Y()
}
