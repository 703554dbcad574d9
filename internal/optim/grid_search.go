package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/experiment"
	"github.com/san-kum/dronesim/internal/sim"
)

var ErrNoCandidates = errors.New("optim: grid has no points")

// Builder sets up an experiment for one point of the grid.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Score  float64
}

// GridSearch evaluates every combination of parameter values and keeps the
// one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Parallel bounds concurrent runs; 0 means unlimited.
	Parallel int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Points enumerates the grid in row-major order.
func (g *GridSearch) Points() []map[string]float64 {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil
	}
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.paramNames[depth]] = val
		g.enumerate(depth+1, next, out)
	}
}

// Search runs every grid point and returns the best one plus all scores in
// grid order. Points whose metric is NaN never win.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (Point, []Point, error) {
	points := g.Points()
	if len(points) == 0 {
		return Point{}, nil, ErrNoCandidates
	}

	jobs := make([]sim.Job, len(points))
	for i, p := range points {
		exp, err := build(p)
		if err != nil {
			return Point{}, nil, fmt.Errorf("grid point %v: %w", p, err)
		}
		jobs[i] = exp.Run
	}
	results, err := sim.RunParallel(ctx, jobs, g.Parallel)
	if err != nil {
		return Point{}, nil, err
	}

	best := Point{Score: math.Inf(1)}
	all := make([]Point, len(points))
	for i, res := range results {
		all[i] = Point{Params: points[i], Score: res.Metrics[metricName]}
		if all[i].Score < best.Score {
			best = all[i]
		}
	}
	if best.Params == nil {
		return Point{}, all, fmt.Errorf("no grid point produced a finite %s", metricName)
	}
	return best, all, nil
}
