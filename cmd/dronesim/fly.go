package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/physics"
	"github.com/san-kum/dronesim/internal/sim"
	"github.com/san-kum/dronesim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const readyTimeout = 5 * time.Second

var (
	frameRate  int
	theme      string
	holdWindow int
	flyMetrics string
	modelFile  string
)

func addFlyFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme")
	cmd.Flags().IntVar(&holdWindow, "hold-window", config.DefaultHoldWindow, "ms a key stays held after its last repeat")
	cmd.Flags().StringVar(&flyMetrics, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&modelFile, "model", "", "drone model file (yaml vertices) sizing the body")
}

func runFly(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		cfg.View.FPS = frameRate
	}
	if cmd.Flags().Changed("theme") {
		cfg.View.Theme = theme
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = modelFile
	}
	if cmd.Flags().Changed("hold-window") {
		cfg.View.HoldWindowMS = holdWindow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// the alt screen owns the terminal, so logs only go to --log-file
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := physics.Load(cfg.Physics.BackendSettings())
	if err != nil {
		return err
	}
	s, err := sim.New(cfg.Physics, logger)
	if err != nil {
		return err
	}

	// the model loads while the wait runs; a failed load cancels the wait
	ready := sim.NewReadiness()
	var spec sim.BodySpec
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cfg.Loader().Resolve(ready) })
	g.Go(func() (err error) {
		spec, err = ready.Wait(gctx, readyTimeout)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.Init(backend, spec); err != nil {
		return err
	}

	keys := viz.NewKeyboard(cfg.View.HoldWindow())
	mixer, err := control.NewMixer(cfg.Mixer, keys)
	if err != nil {
		return err
	}
	loop := sim.NewLoop(s, mixer, logger)

	if flyMetrics != "" {
		if err := metrics.Register(s, prometheus.Labels{"mode": "fly"}); err != nil {
			return err
		}
		loop.AddObserver(metrics.GaugeObserver{})
		stopServer := serveMetrics(ctx, flyMetrics, logger)
		defer stopServer()
	}

	model := viz.NewModel(loop, keys, viz.Options{
		FPS:    cfg.View.FPS,
		Theme:  cfg.View.Theme,
		Camera: cfg.Camera,
		Spawn:  spec.Pose,
	})
	err = viz.Run(ctx, model)
	logger.Info("flight ended", "stats", fmt.Sprintf("%+v", s.Stats()))
	if ctx.Err() != nil {
		// interrupted by a signal
		return nil
	}
	return err
}

// serveMetrics exposes /metrics until ctx is done or the returned stop
// function is called.
func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return stop
}
