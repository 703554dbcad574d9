package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
)

// Loop runs the per-tick pipeline: poll input, mix, step, publish.
type Loop struct {
	sim       *Simulation
	mixer     *control.Mixer
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	tick int
	t    float64
}

func NewLoop(s *Simulation, mixer *control.Mixer, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		sim:       s,
		mixer:     mixer,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger.With("component", "loop"),
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Simulation() *Simulation { return l.sim }
func (l *Loop) Mixer() *control.Mixer   { return l.mixer }
func (l *Loop) Time() float64           { return l.t }

// Tick runs one complete cycle with a measured frame delta.
func (l *Loop) Tick(dt float64) (Frame, error) {
	ch := l.mixer.Update()
	h := l.sim.FrameDelta(dt)
	if err := l.sim.Step(ch.Normalized, dt); err != nil {
		return Frame{}, &dynamo.StepError{Step: l.tick, Time: l.t, Wrapped: err}
	}
	l.tick++
	l.t += h

	pose := l.sim.Pose()
	f := Frame{
		Tick:            l.tick,
		T:               l.t,
		Dt:              h,
		Position:        pose.Position,
		Orientation:     pose.Orientation,
		LinearVelocity:  l.sim.LinearVelocity(),
		AngularVelocity: l.sim.AngularVelocity(),
		Channels:        ch,
		Contact:         l.sim.InContact(),
		Energy:          l.sim.Energy(),
	}
	for _, m := range l.metrics {
		m.Observe(f)
	}
	for _, obs := range l.observers {
		obs.OnStep(f)
	}
	return f, nil
}

// Run executes fixed-dt ticks for cfg.Duration. Cancellation is checked
// between ticks; the partial result is returned with an error matching both
// dynamo.ErrContextCanceled and ctx.Err().
func (l *Loop) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Frames:  make([]Frame, 0, steps/every+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}

	l.logger.Debug("run started", "dt", cfg.Dt, "duration", cfg.Duration, "steps", steps)
	start := l.t
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.finish(result, start)
			return result, canceled(ctx)
		default:
		}

		f, err := l.Tick(cfg.Dt)
		if err != nil {
			l.finish(result, start)
			return result, err
		}
		if i%every == every-1 || i == steps-1 {
			result.Frames = append(result.Frames, f)
		}
		result.Ticks++
	}

	l.finish(result, start)
	l.logger.Debug("run finished", "ticks", result.Ticks, "pose_discards", result.Stats.PoseDiscards)
	return result, nil
}

func canceled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
}

func (l *Loop) finish(result *Result, start float64) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Stats = l.sim.Stats()
	result.Duration = l.t - start
}

// RunRealtime ticks at fps, feeding each tick the wall-clock time since the
// previous one, until ctx is done or onFrame returns false.
func (l *Loop) RunRealtime(ctx context.Context, fps int, onFrame func(Frame) bool) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return canceled(ctx)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			f, err := l.Tick(dt)
			if err != nil {
				return err
			}
			if onFrame != nil && !onFrame(f) {
				return nil
			}
		}
	}
}

func validateRunConfig(cfg RunConfig) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
