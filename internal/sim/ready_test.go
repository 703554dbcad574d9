package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestReadinessResolvesOnce(t *testing.T) {
	r := NewReadiness()
	if r.Ready() {
		t.Fatal("new readiness should not be ready")
	}

	first := DefaultBodySpec(mgl64.Vec3{0, 5, 0})
	second := DefaultBodySpec(mgl64.Vec3{0, 9, 0})
	if !r.Resolve(first) {
		t.Error("first Resolve() = false, want true")
	}
	if r.Resolve(second) {
		t.Error("second Resolve() = true, want false")
	}

	spec, err := r.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if spec != first {
		t.Errorf("Wait() = %+v, want first spec", spec)
	}
}

func TestReadinessWaitsForResolve(t *testing.T) {
	r := NewReadiness()
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Resolve(DefaultBodySpec(mgl64.Vec3{}))
	}()

	if _, err := r.Wait(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !r.Ready() {
		t.Error("Ready() = false after Wait")
	}
}

func TestReadinessTimeout(t *testing.T) {
	r := NewReadiness()
	_, err := r.Wait(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, ErrReadinessTimeout) {
		t.Errorf("Wait() error = %v, want ErrReadinessTimeout", err)
	}
}

func TestReadinessCanceled(t *testing.T) {
	r := NewReadiness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Wait(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
