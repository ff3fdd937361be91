package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(&config.PoolConfig{Size: 2, QueueTimeout: time.Second}, logging.NewNopLogger())

	var mu sync.Mutex
	running, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := p.Acquire(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			defer release()

			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("peak concurrency %d exceeds capacity 2", peak)
	}
	if p.Load() != 0 {
		t.Errorf("expected load 0 after all releases, got %d", p.Load())
	}
}

func TestPool_QueueTimeout(t *testing.T) {
	p := NewPool(&config.PoolConfig{Size: 1, QueueTimeout: 50 * time.Millisecond}, logging.NewNopLogger())
	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = p.Acquire(context.Background())
	execErr := domain.AsExecutionError(err)
	if execErr == nil || execErr.Kind != domain.FailureInternalError || execErr.Message != errs.ErrCapacityExhausted.Error() {
		t.Fatalf("expected capacity exhausted internal_error, got %v", err)
	}
}

func TestPool_CallerCancellation(t *testing.T) {
	p := NewPool(&config.PoolConfig{Size: 1}, logging.NewNopLogger())
	release, _ := p.Acquire(context.Background())
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Acquire(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestPool_ReleaseIsIdempotent(t *testing.T) {
	p := NewPool(&config.PoolConfig{Size: 1, QueueTimeout: 50 * time.Millisecond}, logging.NewNopLogger())
	release, _ := p.Acquire(context.Background())
	release()
	release()

	if p.Load() != 0 {
		t.Fatalf("expected load 0, got %d", p.Load())
	}
	again, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("slot should be free: %v", err)
	}
	again()
}

func TestPool_Uncapped(t *testing.T) {
	p := NewPool(&config.PoolConfig{Size: 0}, logging.NewNopLogger())
	if p.Capacity() != 0 {
		t.Fatalf("expected capacity 0, got %d", p.Capacity())
	}
	var releases []func()
	for i := 0; i < 100; i++ {
		release, err := p.Acquire(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		releases = append(releases, release)
	}
	if p.Load() != 100 {
		t.Errorf("expected load 100, got %d", p.Load())
	}
	for _, r := range releases {
		r()
	}
}
