package sim

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/physics"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRunning(t *testing.T, cfg Config, pos mgl64.Vec3) *Simulation {
	t.Helper()
	s, err := New(cfg, quiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	backend, err := physics.Load(cfg.BackendSettings())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	spec := BodySpec{Pose: physics.IdentityPose(pos), HalfExtents: cfg.HalfExtents}
	if err := s.Init(backend, spec); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func stepN(t *testing.T, s *Simulation, ctl control.Values, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Step(ctl, 1.0/60); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
}

func TestInitErrors(t *testing.T) {
	cfg := DefaultConfig()
	backend, _ := physics.Load(cfg.BackendSettings())
	spec := DefaultBodySpec(mgl64.Vec3{0, 5, 0})

	s, _ := New(cfg, quiet)
	if err := s.Step(control.Values{}, 1.0/60); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Step() before Init error = %v, want ErrNotInitialized", err)
	}
	if s.State() != Uninitialized {
		t.Errorf("State() = %v, want uninitialized", s.State())
	}

	if err := s.Init(nil, spec); !errors.Is(err, physics.ErrBackendUnavailable) {
		t.Errorf("Init(nil) error = %v, want ErrBackendUnavailable", err)
	}

	bad := spec
	bad.Pose.Position = mgl64.Vec3{math.NaN(), 0, 0}
	if err := s.Init(backend, bad); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("Init(NaN pose) error = %v, want ErrInvalidBody", err)
	}

	if err := s.Init(backend, spec); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if s.State() != Running {
		t.Errorf("State() = %v, want running", s.State())
	}
	if err := s.Init(backend, spec); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Init() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestInitRejectsMismatchedBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 1.62
	cfg.MaxThrust = 2 * physics.HoverThrust(cfg.Mass, cfg.Gravity)
	spec := DefaultBodySpec(mgl64.Vec3{0, 5, 0})

	s, err := New(cfg, quiet)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	earth, _ := physics.Load(physics.DefaultSettings())
	if err := s.Init(earth, spec); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("Init(gravity mismatch) error = %v, want ErrParameterBounds", err)
	}
	steps := cfg.BackendSettings()
	steps.SubSteps = cfg.SubSteps + 1
	other, _ := physics.Load(steps)
	if err := s.Init(other, spec); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("Init(sub-step mismatch) error = %v, want ErrParameterBounds", err)
	}
	if s.State() != Uninitialized {
		t.Fatalf("State() = %v, want uninitialized", s.State())
	}

	moon, _ := physics.Load(cfg.BackendSettings())
	if err := s.Init(moon, spec); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	stepN(t, s, control.Values{Throttle: cfg.HoverThrottle()}, 60)
	if vy := s.LinearVelocity().Y(); math.Abs(vy) > 1e-6 {
		t.Errorf("hover vy = %v, want ~0", vy)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLinearVelocity = 0
	if _, err := New(cfg, quiet); err == nil {
		t.Error("New() with zero velocity clamp should fail")
	}
}

func TestFreeFallOneSecond(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinearDamping = 0
	cfg.AngularDamping = 0
	cfg.DragCoefficient = 0

	s := newRunning(t, cfg, mgl64.Vec3{0, 50, 0})
	stepN(t, s, control.Values{}, 60)

	if vy := s.LinearVelocity().Y(); math.Abs(vy+9.81) > 1e-9 {
		t.Errorf("vy after 1s = %v, want -9.81", vy)
	}
}

func TestFreeFallWithDampingAndDrag(t *testing.T) {
	s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 50, 0})

	prev := 0.0
	for i := 0; i < 60; i++ {
		stepN(t, s, control.Values{}, 1)
		vy := s.LinearVelocity().Y()
		if vy >= prev {
			t.Fatalf("tick %d: vy = %v, not falling faster than %v", i, vy, prev)
		}
		prev = vy
	}
	if prev < -9.81 || prev > -4 {
		t.Errorf("damped vy after 1s = %v, want within (-9.81, -4)", prev)
	}
	if s.Stats().DragSkips != 1 {
		t.Errorf("DragSkips = %d, want 1 (only the first step starts at rest)", s.Stats().DragSkips)
	}
}

func TestFullThrottleClimbs(t *testing.T) {
	s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 5, 0})

	climbing := false
	for i := 0; i < 3 && !climbing; i++ {
		stepN(t, s, control.Values{Throttle: 1}, 1)
		climbing = s.LinearVelocity().Y() > 0
	}
	if !climbing {
		t.Errorf("vy = %v after full throttle, want positive", s.LinearVelocity().Y())
	}
}

func TestRollRateRisesToClamp(t *testing.T) {
	cfg := DefaultConfig()
	s := newRunning(t, cfg, mgl64.Vec3{0, 200, 0})
	ctl := control.Values{Roll: 1, Throttle: cfg.HoverThrottle()}

	prev := 0.0
	plateau := 0
	for i := 0; i < 120; i++ {
		stepN(t, s, ctl, 1)
		w := s.Pose().ToLocal(s.AngularVelocity()).X()
		if w < prev-1e-9 {
			t.Fatalf("tick %d: roll rate dropped from %v to %v", i, prev, w)
		}
		if w > cfg.MaxAngularVelocity+1e-9 {
			t.Fatalf("tick %d: roll rate %v above clamp", i, w)
		}
		if math.Abs(w-cfg.MaxAngularVelocity) < 1e-6 {
			plateau++
		}
		prev = w
	}
	if plateau < 30 {
		t.Errorf("roll rate at clamp for %d ticks, want a plateau", plateau)
	}
	if s.Stats().AngularClamps == 0 {
		t.Error("AngularClamps = 0, want clamp hits")
	}
}

func TestTorqueSigns(t *testing.T) {
	tests := []struct {
		name string
		ctl  control.Values
		axis int
		sign float64
	}{
		{"roll about +x", control.Values{Roll: 1}, 0, 1},
		{"yaw inverted about y", control.Values{Yaw: 1}, 1, -1},
		{"pitch about +z", control.Values{Pitch: 1}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})
			stepN(t, s, tt.ctl, 1)
			w := s.AngularVelocity()
			if w[tt.axis]*tt.sign <= 0 {
				t.Errorf("angular velocity = %v, want sign %v on axis %d", w, tt.sign, tt.axis)
			}
		})
	}
}

func TestVelocityClampInvariant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxThrust = 1e6
	cfg.TorqueStrength = 1e6
	s := newRunning(t, cfg, mgl64.Vec3{0, 1000, 0})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		ctl := control.Values{
			Roll:     rng.Float64()*4 - 2,
			Pitch:    rng.Float64()*4 - 2,
			Yaw:      rng.Float64()*4 - 2,
			Throttle: rng.Float64() * 2,
		}
		if err := s.Step(ctl, rng.Float64()*0.2); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if v := s.LinearVelocity().Len(); v > cfg.MaxLinearVelocity+1e-9 {
			t.Fatalf("tick %d: |v| = %v", i, v)
		}
		if w := s.AngularVelocity().Len(); w > cfg.MaxAngularVelocity+1e-9 {
			t.Fatalf("tick %d: |w| = %v", i, w)
		}
		if !s.Pose().IsFinite() {
			t.Fatalf("tick %d: non-finite pose %v", i, s.Pose())
		}
	}
	st := s.Stats()
	if st.LinearClamps == 0 || st.AngularClamps == 0 {
		t.Errorf("expected clamp hits, got %+v", st)
	}
}

func TestExtremeInputsKeepPoseFinite(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	extremes := []float64{math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64, 1e300, -1e300, 0}
	pick := func() float64 { return extremes[rng.Intn(len(extremes))] }

	s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 10, 0})
	for i := 0; i < 300; i++ {
		ctl := control.Values{Roll: pick(), Pitch: pick(), Yaw: pick(), Throttle: pick()}
		stepN(t, s, ctl, 1)
		if !s.Pose().IsFinite() {
			t.Fatalf("tick %d: non-finite pose", i)
		}
	}
	if s.Stats().SanitizedInputs == 0 {
		t.Error("SanitizedInputs = 0, want clamped controls counted")
	}
}

func TestDivergedStepIsDiscarded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxThrust = math.MaxFloat64
	cfg.TorqueStrength = math.MaxFloat64
	s := newRunning(t, cfg, mgl64.Vec3{0, 10, 0})
	stepN(t, s, control.Values{}, 5)
	before := s.Pose()

	stepN(t, s, control.Values{Roll: 1, Throttle: 1}, 1)

	if !s.Pose().IsFinite() {
		t.Fatal("pose became non-finite")
	}
	if s.Pose() != before {
		t.Errorf("pose = %v, want previous %v", s.Pose(), before)
	}
	if s.Stats().PoseDiscards != 1 {
		t.Errorf("PoseDiscards = %d, want 1", s.Stats().PoseDiscards)
	}

	// the simulation keeps running from the retained state
	stepN(t, s, control.Values{}, 1)
	if s.Pose().Position.Y() >= before.Position.Y() {
		t.Errorf("drone should keep falling, y = %v", s.Pose().Position.Y())
	}
}

func TestHoverConverges(t *testing.T) {
	cfg := DefaultConfig()
	s := newRunning(t, cfg, mgl64.Vec3{0, 50, 0})
	stepN(t, s, control.Values{}, 30)

	hover := control.Values{Throttle: cfg.HoverThrottle()}
	stepN(t, s, hover, 300)
	v0 := s.LinearVelocity().Y()
	stepN(t, s, hover, 1)
	v1 := s.LinearVelocity().Y()

	if math.Abs(v1) > 0.05 {
		t.Errorf("vy = %v, want near zero", v1)
	}
	if accel := (v1 - v0) * 60; math.Abs(accel) > 0.1 {
		t.Errorf("vertical acceleration = %v, want near zero", accel)
	}
}

func TestFrameDelta(t *testing.T) {
	a := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})
	b := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})

	if err := a.Step(control.Values{}, 2.5); err != nil {
		t.Fatal(err)
	}
	if err := b.Step(control.Values{}, 1.0/20); err != nil {
		t.Fatal(err)
	}
	if a.Pose() != b.Pose() {
		t.Errorf("large delta not clamped: %v vs %v", a.Pose(), b.Pose())
	}
	if a.Stats().FrameClamps != 1 || b.Stats().FrameClamps != 0 {
		t.Errorf("FrameClamps = %d/%d, want 1/0", a.Stats().FrameClamps, b.Stats().FrameClamps)
	}

	before := a.Pose()
	for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		if err := a.Step(control.Values{Throttle: 1}, dt); err != nil {
			t.Fatal(err)
		}
	}
	if a.Pose() != before {
		t.Error("invalid deltas should not move the drone")
	}
	if a.Stats().SkippedFrames != 4 {
		t.Errorf("SkippedFrames = %d, want 4", a.Stats().SkippedFrames)
	}
}

func TestNonFiniteControlsActAsIdle(t *testing.T) {
	a := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})
	b := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})

	nan := math.NaN()
	stepN(t, a, control.Values{Roll: nan, Pitch: math.Inf(1), Yaw: nan, Throttle: nan}, 10)
	stepN(t, b, control.Values{}, 10)

	if a.Pose() != b.Pose() {
		t.Errorf("pose = %v, want %v", a.Pose(), b.Pose())
	}
}

func TestGroundStopsFall(t *testing.T) {
	s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 1, 0})
	stepN(t, s, control.Values{}, 180)

	if y := s.Pose().Position.Y(); y < physics.DefaultHalfExtents.Y()-1e-6 {
		t.Errorf("drone sank into the ground: y = %v", y)
	}
	if !s.InContact() || s.Stats().GroundContacts == 0 {
		t.Error("expected ground contact")
	}
}

func TestReset(t *testing.T) {
	s := newRunning(t, DefaultConfig(), mgl64.Vec3{0, 20, 0})
	stepN(t, s, control.Values{Roll: 1, Throttle: 1}, 30)

	pose := physics.IdentityPose(mgl64.Vec3{1, 2, 3})
	if err := s.Reset(pose); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if s.Pose() != pose {
		t.Errorf("Pose() = %v, want %v", s.Pose(), pose)
	}
	if s.LinearVelocity() != (mgl64.Vec3{}) || s.AngularVelocity() != (mgl64.Vec3{}) {
		t.Error("Reset() should zero velocities")
	}
}
