package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job builds and runs one independent simulation. Each job owns its own
// world, so jobs may run concurrently.
type Job func(ctx context.Context) (*Result, error)

// RunParallel runs jobs with at most limit in flight. The first failure
// cancels the rest.
func RunParallel(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := job(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
