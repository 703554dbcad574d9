package sim

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Readiness is resolved exactly once by the asset loader with the drone's
// body spec. The simulation waits on it instead of polling for the model.
type Readiness struct {
	once sync.Once
	done chan struct{}
	spec BodySpec
}

func NewReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

// Resolve publishes spec. Only the first call has an effect; it reports
// whether this call resolved the signal.
func (r *Readiness) Resolve(spec BodySpec) bool {
	resolved := false
	r.once.Do(func() {
		r.spec = spec
		close(r.done)
		resolved = true
	})
	return resolved
}

func (r *Readiness) Ready() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the spec is resolved, ctx is done or timeout elapses.
// A non-positive timeout waits on ctx alone.
func (r *Readiness) Wait(ctx context.Context, timeout time.Duration) (BodySpec, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-r.done:
		return r.spec, nil
	case <-ctx.Done():
		if r.Ready() {
			return r.spec, nil
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return BodySpec{}, ErrReadinessTimeout
		}
		return BodySpec{}, ctx.Err()
	}
}
