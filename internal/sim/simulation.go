package sim

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/physics"
)

// Simulation owns the physics world with the ground and the drone and
// advances it once per tick from normalized control values.
type Simulation struct {
	cfg    Config
	logger *slog.Logger

	state  State
	world  *physics.World
	ground *physics.Body
	drone  *physics.Body

	stats counters
}

type counters struct {
	steps, poseDiscards, linearClamps, angularClamps atomic.Uint64
	frameClamps, skippedFrames, dragSkips            atomic.Uint64
	sanitizedInputs                                  atomic.Uint64
	groundContacts                                   atomic.Uint64
}

// New validates cfg. The simulation stays uninitialized until Init.
func New(cfg Config, logger *slog.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulation{cfg: cfg, logger: logger.With("component", "sim")}, nil
}

func (s *Simulation) Config() Config { return s.cfg }
func (s *Simulation) State() State   { return s.state }

// Init builds the world from a loaded backend: gravity, the static ground
// and the always-active drone at spec.Pose. The backend must have been
// loaded with the config's BackendSettings.
func (s *Simulation) Init(backend *physics.Backend, spec BodySpec) error {
	if s.state == Running {
		return ErrAlreadyRunning
	}
	if backend == nil {
		return fmt.Errorf("%w: no backend handle", physics.ErrBackendUnavailable)
	}
	if bs := backend.Settings(); bs.Gravity != s.cfg.Gravity || bs.SubSteps != s.cfg.SubSteps {
		return fmt.Errorf("%w: backend gravity=%g sub_steps=%d, config gravity=%g sub_steps=%d",
			dynamo.ErrParameterBounds, bs.Gravity, bs.SubSteps, s.cfg.Gravity, s.cfg.SubSteps)
	}
	if !spec.Pose.IsFinite() {
		return fmt.Errorf("%w: non-finite pose", ErrInvalidBody)
	}
	if spec.HalfExtents == (mgl64.Vec3{}) {
		spec.HalfExtents = s.cfg.HalfExtents
	}

	world := backend.NewWorld()
	ground, err := world.AddBody(physics.GroundBody())
	if err != nil {
		return fmt.Errorf("ground: %w", err)
	}

	body := physics.DroneBody(spec.Pose, spec.HalfExtents)
	body.Mass = s.cfg.Mass
	body.LinearDamping = s.cfg.LinearDamping
	body.AngularDamping = s.cfg.AngularDamping
	body.Friction = s.cfg.Friction
	drone, err := world.AddBody(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	s.world, s.ground, s.drone = world, ground, drone
	s.state = Running
	s.logger.Info("simulation initialized",
		"position", spec.Pose.Position,
		"half_extents", spec.HalfExtents,
		"gravity", world.Gravity().Y(),
		"sub_steps", world.SubSteps())
	return nil
}

// FrameDelta returns the delta Step integrates for a measured dt: clamped to
// MaxFrameDelta, or 0 when dt is non-positive or non-finite.
func (s *Simulation) FrameDelta(dt float64) float64 {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0
	}
	return math.Min(dt, s.cfg.MaxFrameDelta)
}

// Step applies drag, thrust and torque in that order, advances the world by
// dt, clamps the velocities and publishes the new pose. A step that leaves
// the drone in a non-finite state is discarded. Only calling Step before
// Init is an error.
func (s *Simulation) Step(ctl control.Values, dt float64) error {
	if s.state != Running {
		return ErrNotInitialized
	}

	h := s.FrameDelta(dt)
	if h == 0 {
		s.stats.skippedFrames.Add(1)
		s.logger.Debug("frame skipped", "dt", dt)
		return nil
	}
	if h < dt {
		s.stats.frameClamps.Add(1)
	}
	ctl = s.sanitize(ctl)

	prev := s.drone.Snapshot()
	pose := prev.Pose

	// drag opposes the pre-step velocity
	v := prev.LinearVelocity
	if speed := v.Len(); speed == 0 {
		s.stats.dragSkips.Add(1)
	} else {
		mag := 0.5 * s.cfg.DragCoefficient * s.cfg.FrontalArea * s.cfg.AirDensity * speed * speed
		s.drone.ApplyCentralForce(v.Mul(-mag / speed))
	}

	thrust := ctl.Throttle * s.cfg.MaxThrust
	s.drone.ApplyCentralForce(pose.Up().Mul(thrust))

	local := mgl64.Vec3{ctl.Roll, -ctl.Yaw, ctl.Pitch}.Mul(s.cfg.TorqueStrength)
	s.drone.ApplyTorque(pose.ToWorld(local))

	contactsBefore := s.world.Contacts()
	s.world.Step(h)
	if s.world.Contacts() > contactsBefore {
		s.stats.groundContacts.Add(1)
	}

	if lin, clamped := dynamo.ClampLength(s.drone.LinearVelocity(), s.cfg.MaxLinearVelocity); clamped {
		s.drone.SetLinearVelocity(lin)
		s.stats.linearClamps.Add(1)
	}
	if ang, clamped := dynamo.ClampLength(s.drone.AngularVelocity(), s.cfg.MaxAngularVelocity); clamped {
		s.drone.SetAngularVelocity(ang)
		s.stats.angularClamps.Add(1)
	}

	if !s.drone.Snapshot().IsFinite() {
		s.drone.Restore(prev)
		s.stats.poseDiscards.Add(1)
		s.logger.Debug("non-finite step discarded", "dt", h, "controls", ctl)
	}

	s.stats.steps.Add(1)
	return nil
}

// sanitize clamps controls into their normalized bounds. Non-finite values
// become the idle value.
func (s *Simulation) sanitize(v control.Values) control.Values {
	out := v
	for _, a := range control.Axes {
		lo := -1.0
		if a == control.Throttle {
			lo = 0
		}
		x := v.Get(a)
		if !dynamo.Finite(x) {
			x = 0
		}
		out = out.With(a, dynamo.Clamp(x, lo, 1))
	}
	if out != v {
		s.stats.sanitizedInputs.Add(1)
	}
	return out
}

// Reset places the drone at pose at rest.
func (s *Simulation) Reset(pose physics.Pose) error {
	if s.state != Running {
		return ErrNotInitialized
	}
	if !pose.IsFinite() {
		return fmt.Errorf("%w: non-finite pose", ErrInvalidBody)
	}
	s.drone.Restore(physics.BodyState{Pose: pose})
	s.drone.SetPose(pose)
	return nil
}

// Pose returns the last published drone pose.
func (s *Simulation) Pose() physics.Pose {
	if s.drone == nil {
		return physics.IdentityPose(mgl64.Vec3{})
	}
	return s.drone.Pose()
}

func (s *Simulation) LinearVelocity() mgl64.Vec3 {
	if s.drone == nil {
		return mgl64.Vec3{}
	}
	return s.drone.LinearVelocity()
}

func (s *Simulation) AngularVelocity() mgl64.Vec3 {
	if s.drone == nil {
		return mgl64.Vec3{}
	}
	return s.drone.AngularVelocity()
}

// HalfExtents returns the drone box size, or the configured size before Init.
func (s *Simulation) HalfExtents() mgl64.Vec3 {
	if s.drone == nil {
		return s.cfg.HalfExtents
	}
	return s.drone.HalfExtents()
}

// InContact reports whether the drone touched the ground in the last step.
func (s *Simulation) InContact() bool {
	return s.drone != nil && s.drone.InContact()
}

// Energy returns the drone's mechanical energy relative to the ground plane.
func (s *Simulation) Energy() float64 {
	if s.drone == nil {
		return 0
	}
	return physics.Energy(s.drone, s.cfg.Gravity)
}

// Stats is safe to call from any goroutine.
func (s *Simulation) Stats() Stats {
	return Stats{
		Steps:           s.stats.steps.Load(),
		PoseDiscards:    s.stats.poseDiscards.Load(),
		LinearClamps:    s.stats.linearClamps.Load(),
		AngularClamps:   s.stats.angularClamps.Load(),
		FrameClamps:     s.stats.frameClamps.Load(),
		SkippedFrames:   s.stats.skippedFrames.Load(),
		DragSkips:       s.stats.dragSkips.Load(),
		GroundContacts:  s.stats.groundContacts.Load(),
		SanitizedInputs: s.stats.sanitizedInputs.Load(),
	}
}
