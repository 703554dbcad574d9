package optim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/experiment"
)

func TestPoints(t *testing.T) {
	g := NewGridSearch([]string{"kp", "kd"}, [][]float64{{1, 2, 3}, {0, 1}})
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["kp"] != 1 || pts[0]["kd"] != 0 || pts[5]["kp"] != 3 || pts[5]["kd"] != 1 {
		t.Errorf("unexpected order: first %v last %v", pts[0], pts[5])
	}

	if NewGridSearch([]string{"kp"}, nil).Points() != nil {
		t.Error("mismatched names and ranges should give no points")
	}
}

func TestSearchAltitudeHold(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := experiment.NewRegistry()
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Scenario = "hold"
		cfg.Run.Duration = 3
		cfg.Hold.Kp = p["kp"]
		exp := experiment.New(cfg, logger)
		return exp, exp.Setup(reg)
	}

	g := NewGridSearch([]string{"kp"}, [][]float64{{0, 0.1}})
	best, all, err := g.Search(context.Background(), build, "altitude_error")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scored points, got %d", len(all))
	}
	// with kp=0 the hold never climbs toward the target
	if best.Params["kp"] != 0.1 {
		t.Errorf("expected kp=0.1 to win, got %v (scores %v)", best.Params, all)
	}

	if _, _, err := NewGridSearch(nil, nil).Search(context.Background(), build, "altitude_error"); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}
