package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func noop(ctx context.Context) error { return nil }

func TestWorkerPoolRunsJobs(t *testing.T) {
	p := NewWorkerPool(4, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var ran int32
	const jobs = 100
	for i := 0; i < jobs; i++ {
		err := p.Submit(func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	p.Close()

	if got := atomic.LoadInt32(&ran); int(got) != jobs {
		t.Fatalf("expected %d jobs executed, got %d", jobs, got)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewWorkerPool(1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	p.Close()
	cancel()
	if err := p.Submit(noop); err != ErrPoolClosed {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	// Closing twice is harmless.
	p.Close()
}

func TestSubmitUnblocksOnClose(t *testing.T) {
	p := NewWorkerPool(1, 1)
	// No workers: the first job fills the queue and the second blocks.
	if err := p.Submit(noop); err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- p.Submit(noop) }()
	time.Sleep(10 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case err := <-done:
		if err != ErrPoolClosed {
			t.Fatalf("expected ErrPoolClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Submit did not return after Close")
	}
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}

func TestSubmitCtxHonoursCancellation(t *testing.T) {
	p := NewWorkerPool(1, 1)
	defer p.Close()
	if err := p.Submit(noop); err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.SubmitCtx(ctx, noop)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestContextCancellationStopsWorkers(t *testing.T) {
	p := NewWorkerPool(2, 16)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	done := make(chan struct{}, 1)
	go func() {
		p.Close()
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("Close blocked after context cancellation")
	}
}
