package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/physics"
	"github.com/san-kum/dronesim/internal/sim"
)

// Experiment is one scenario flown headless with a fixed dt.
type Experiment struct {
	cfg    config.Config
	script *Script
	logger *slog.Logger
	loop   *sim.Loop
}

// New copies cfg; later changes to it do not affect the experiment.
func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: *cfg, logger: logger}
}

func (e *Experiment) WithScript(s *Script) *Experiment {
	e.script = s
	return e
}

// Setup builds the backend, simulation, mixer and loop for the configured
// scenario and attaches the default metrics plus any extra observers.
func (e *Experiment) Setup(reg *Registry, extra ...sim.Observer) error {
	scenario, err := reg.Get(e.cfg.Scenario)
	if err != nil {
		return err
	}
	pilot, err := scenario.Pilot(&e.cfg, e.script)
	if err != nil {
		return fmt.Errorf("%s: %w", scenario.Name, err)
	}

	backend, err := physics.Load(e.cfg.Physics.BackendSettings())
	if err != nil {
		return err
	}
	logger := e.logger.With("scenario", scenario.Name)
	s, err := sim.New(e.cfg.Physics, logger)
	if err != nil {
		return err
	}
	spec, err := e.cfg.Loader().Spec()
	if err != nil {
		return err
	}
	if err := s.Init(backend, spec); err != nil {
		return err
	}
	mixer, err := control.NewMixer(e.cfg.Mixer, pilot.Device)
	if err != nil {
		return fmt.Errorf("mixer: %w", err)
	}

	loop := sim.NewLoop(s, mixer, logger)
	for _, m := range metrics.Default() {
		loop.AddMetric(m)
	}
	loop.AddMetric(metrics.NewAltitudeError(e.cfg.Hold.Target))
	for _, obs := range pilot.Observers {
		loop.AddObserver(obs)
	}
	for _, obs := range extra {
		loop.AddObserver(obs)
	}
	e.loop = loop
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.loop == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.loop.Run(ctx, e.cfg.Run)
}

// Loop returns the underlying loop for adding observers.
func (e *Experiment) Loop() *sim.Loop {
	return e.loop
}

func (e *Experiment) Config() config.Config {
	return e.cfg
}

// SetupAll builds one experiment per config. script is shared by any
// script scenarios and may be nil.
func SetupAll(reg *Registry, cfgs []*config.Config, script *Script, logger *slog.Logger) ([]*Experiment, error) {
	exps := make([]*Experiment, len(cfgs))
	for i, cfg := range cfgs {
		exps[i] = New(cfg, logger).WithScript(script)
		if err := exps[i].Setup(reg); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Scenario, err)
		}
	}
	return exps, nil
}

// RunAll runs experiments concurrently, at most limit at a time. Results
// keep the order of exps.
func RunAll(ctx context.Context, exps []*Experiment, limit int) ([]*sim.Result, error) {
	jobs := make([]sim.Job, len(exps))
	for i, exp := range exps {
		jobs[i] = exp.Run
	}
	return sim.RunParallel(ctx, jobs, limit)
}
