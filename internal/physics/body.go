package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/dynamo"
)

// BodyConfig describes a box-shaped body. Mass 0 makes the body static.
type BodyConfig struct {
	Name           string
	Mass           float64
	HalfExtents    mgl64.Vec3
	Pose           Pose
	LinearDamping  float64
	AngularDamping float64
	Friction       float64
	AlwaysActive   bool
}

// BodyState is the dynamic part of a body, used for snapshots.
type BodyState struct {
	Pose            Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

func (s BodyState) IsFinite() bool {
	return s.Pose.IsFinite() && dynamo.FiniteVec(s.LinearVelocity) && dynamo.FiniteVec(s.AngularVelocity)
}

type Body struct {
	name        string
	halfExtents mgl64.Vec3

	mass       float64
	invMass    float64
	inertia    mgl64.Vec3 // principal moments, body frame
	invInertia mgl64.Vec3

	linearDamping  float64
	angularDamping float64
	friction       float64

	pose   Pose
	linVel mgl64.Vec3
	angVel mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	alwaysActive bool
	sleeping     bool
	idleTime     float64
	inContact    bool
}

func newBody(cfg BodyConfig) (*Body, error) {
	if cfg.Mass < 0 || !dynamo.Finite(cfg.Mass) {
		return nil, fmt.Errorf("body %q: %w", cfg.Name, dynamo.ParamError("mass", cfg.Mass))
	}
	for i := 0; i < 3; i++ {
		if cfg.HalfExtents[i] <= 0 || !dynamo.Finite(cfg.HalfExtents[i]) {
			return nil, fmt.Errorf("body %q: %w", cfg.Name, dynamo.ParamError("half_extent", cfg.HalfExtents[i]))
		}
	}
	if !cfg.Pose.IsFinite() {
		return nil, fmt.Errorf("body %q: %w", cfg.Name, dynamo.ErrInvalidState)
	}

	b := &Body{
		name:           cfg.Name,
		halfExtents:    cfg.HalfExtents,
		mass:           cfg.Mass,
		linearDamping:  dynamo.Clamp(cfg.LinearDamping, 0, 1),
		angularDamping: dynamo.Clamp(cfg.AngularDamping, 0, 1),
		friction:       math.Max(0, cfg.Friction),
		pose:           Pose{Position: cfg.Pose.Position, Orientation: cfg.Pose.Orientation.Normalize()},
		alwaysActive:   cfg.AlwaysActive,
	}
	if cfg.Mass > 0 {
		b.invMass = 1 / cfg.Mass
		b.inertia = BoxInertia(cfg.Mass, cfg.HalfExtents)
		b.invInertia = mgl64.Vec3{1 / b.inertia[0], 1 / b.inertia[1], 1 / b.inertia[2]}
	}
	return b, nil
}

// BoxInertia returns the principal moments of a solid box.
func BoxInertia(mass float64, half mgl64.Vec3) mgl64.Vec3 {
	lx, ly, lz := 2*half[0], 2*half[1], 2*half[2]
	k := mass / 12
	return mgl64.Vec3{
		k * (ly*ly + lz*lz),
		k * (lx*lx + lz*lz),
		k * (lx*lx + ly*ly),
	}
}

func (b *Body) Name() string                    { return b.name }
func (b *Body) Mass() float64                   { return b.mass }
func (b *Body) HalfExtents() mgl64.Vec3         { return b.halfExtents }
func (b *Body) IsStatic() bool                  { return b.invMass == 0 }
func (b *Body) Sleeping() bool                  { return b.sleeping }
func (b *Body) InContact() bool                 { return b.inContact }
func (b *Body) Pose() Pose                      { return b.pose }
func (b *Body) LinearVelocity() mgl64.Vec3      { return b.linVel }
func (b *Body) AngularVelocity() mgl64.Vec3     { return b.angVel }
func (b *Body) LocalInertia() mgl64.Vec3        { return b.inertia }
func (b *Body) TotalTorque() mgl64.Vec3         { return b.torque }
func (b *Body) SetLinearVelocity(v mgl64.Vec3)  { b.linVel = v }
func (b *Body) SetAngularVelocity(w mgl64.Vec3) { b.angVel = w }

// InertiaWorld returns the inertia tensor rotated into world space.
func (b *Body) InertiaWorld() mgl64.Mat3 {
	r := b.pose.Orientation.Mat4().Mat3()
	return r.Mul3(mgl64.Diag3(b.inertia)).Mul3(r.Transpose())
}

// KineticEnergy returns translational plus rotational kinetic energy.
func (b *Body) KineticEnergy() float64 {
	if b.IsStatic() {
		return 0
	}
	lin := 0.5 * b.mass * b.linVel.Dot(b.linVel)
	rot := 0.5 * b.angVel.Dot(b.InertiaWorld().Mul3x1(b.angVel))
	return lin + rot
}

// SetPose teleports the body and wakes it.
func (b *Body) SetPose(p Pose) {
	b.pose = Pose{Position: p.Position, Orientation: p.Orientation.Normalize()}
	b.Wake()
}

func (b *Body) ApplyCentralForce(f mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.force = b.force.Add(f)
	if f.Len() > 0 {
		b.Wake()
	}
}

// ApplyTorque adds a world-space torque for the next step.
func (b *Body) ApplyTorque(t mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.torque = b.torque.Add(t)
	if t.Len() > 0 {
		b.Wake()
	}
}

func (b *Body) ClearForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

func (b *Body) Wake() {
	b.sleeping = false
	b.idleTime = 0
}

func (b *Body) Snapshot() BodyState {
	return BodyState{Pose: b.pose, LinearVelocity: b.linVel, AngularVelocity: b.angVel}
}

// Restore puts the body back into a snapshot state and drops pending forces.
func (b *Body) Restore(s BodyState) {
	b.pose = s.Pose
	b.linVel = s.LinearVelocity
	b.angVel = s.AngularVelocity
	b.ClearForces()
}

// corners returns the eight box corners in world space.
func (b *Body) corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.halfExtents
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				local := mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]}
				out[i] = b.pose.Position.Add(b.pose.Orientation.Rotate(local))
				i++
			}
		}
	}
	return out
}
