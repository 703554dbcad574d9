package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns gravity, bodies and the sub-stepping solver.
type World struct {
	gravity        mgl64.Vec3
	subSteps       int
	sleepThreshold float64
	sleepTime      float64

	bodies   []*Body
	contacts uint64
}

// AddBody creates a body from cfg and adds it to the world. Bodies are
// never removed.
func (w *World) AddBody(cfg BodyConfig) (*Body, error) {
	b, err := newBody(cfg)
	if err != nil {
		return nil, err
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

func (w *World) Bodies() []*Body     { return w.bodies }
func (w *World) Gravity() mgl64.Vec3 { return w.gravity }
func (w *World) SubSteps() int       { return w.subSteps }

// Contacts returns the number of sub-steps in which a dynamic body touched a
// static one.
func (w *World) Contacts() uint64 { return w.contacts }

// Step advances the world by dt, split into equal sub-steps. Accumulated
// forces and torques act for the whole step and are cleared afterwards.
// Non-positive or non-finite dt is ignored.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	h := dt / float64(w.subSteps)
	for i := 0; i < w.subSteps; i++ {
		for _, b := range w.bodies {
			if b.IsStatic() || b.sleeping {
				continue
			}
			w.integrate(b, h)
			w.resolveContacts(b)
			w.updateSleep(b, h)
		}
	}
	for _, b := range w.bodies {
		b.ClearForces()
	}
}

func (w *World) integrate(b *Body, h float64) {
	accel := w.gravity.Add(b.force.Mul(b.invMass))
	b.linVel = b.linVel.Add(accel.Mul(h))

	// torque -> body frame -> scale by inverse principal inertia -> world frame
	q := b.pose.Orientation
	local := q.Conjugate().Rotate(b.torque)
	alpha := q.Rotate(mgl64.Vec3{
		local[0] * b.invInertia[0],
		local[1] * b.invInertia[1],
		local[2] * b.invInertia[2],
	})
	b.angVel = b.angVel.Add(alpha.Mul(h))

	b.linVel = b.linVel.Mul(math.Pow(1-b.linearDamping, h))
	b.angVel = b.angVel.Mul(math.Pow(1-b.angularDamping, h))

	b.pose.Position = b.pose.Position.Add(b.linVel.Mul(h))

	spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(q).Scale(0.5 * h)
	b.pose.Orientation = normalize(q.Add(spin))
}

// normalize divides by the length without special cases so that a diverged
// orientation stays non-finite and can be detected by the caller.
func normalize(q mgl64.Quat) mgl64.Quat {
	l := q.Len()
	return mgl64.Quat{W: q.W / l, V: q.V.Mul(1 / l)}
}

// resolveContacts pushes a dynamic body out of static slabs along +Y,
// removes the approaching normal velocity and applies Coulomb friction to
// the tangential velocity.
func (w *World) resolveContacts(b *Body) {
	b.inContact = false
	corners := b.corners()
	for _, s := range w.bodies {
		if !s.IsStatic() {
			continue
		}
		lo := s.pose.Position.Sub(s.halfExtents)
		hi := s.pose.Position.Add(s.halfExtents)

		penetration := 0.0
		for _, c := range corners {
			if c[0] < lo[0] || c[0] > hi[0] || c[2] < lo[2] || c[2] > hi[2] {
				continue
			}
			if c[1] < hi[1] && c[1] > lo[1] {
				penetration = math.Max(penetration, hi[1]-c[1])
			}
		}
		if penetration == 0 {
			continue
		}

		w.contacts++
		b.inContact = true
		b.pose.Position[1] += penetration
		for i := range corners {
			corners[i][1] += penetration
		}

		vn := b.linVel[1]
		if vn >= 0 {
			continue
		}
		b.linVel[1] = 0

		tangent := mgl64.Vec3{b.linVel[0], 0, b.linVel[2]}
		speed := tangent.Len()
		if speed == 0 {
			continue
		}
		mu := 0.5 * (b.friction + s.friction)
		drop := math.Min(speed, mu*-vn)
		b.linVel = b.linVel.Sub(tangent.Mul(drop / speed))
	}
}

func (w *World) updateSleep(b *Body, h float64) {
	if b.alwaysActive {
		return
	}
	if b.linVel.Len() < w.sleepThreshold && b.angVel.Len() < w.sleepThreshold {
		b.idleTime += h
		if b.idleTime > w.sleepTime {
			b.sleeping = true
			b.linVel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
		}
		return
	}
	b.idleTime = 0
}
