package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lectura-dashboard/internal/logger"
)

func TestPool_RunsRegisteredHandler(t *testing.T) {
	p := NewPool(2, 4, time.Second, logger.Nop())

	var mu sync.Mutex
	seen := map[string]uint64{}
	done := make(chan struct{}, 2)
	p.Register(KindQuizGeneration, func(ctx context.Context, job Job) error {
		mu.Lock()
		seen[job.LectureID] = job.Token
		mu.Unlock()
		done <- struct{}{}
		return nil
	})
	p.Start()
	defer p.Stop()

	for i, id := range []string{"cs101", "hist202"} {
		if _, err := p.Submit(Job{Kind: KindQuizGeneration, LectureID: id, Token: uint64(i + 1)}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if seen["cs101"] != 1 || seen["hist202"] != 2 {
		t.Fatalf("unexpected jobs seen %v", seen)
	}
}

func TestPool_SubmitErrors(t *testing.T) {
	p := NewPool(1, 1, 0, logger.Nop())

	if _, err := p.Submit(Job{Kind: KindSummaryGeneration}); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("expected ErrNoHandler, got %v", err)
	}

	p.Register(KindSummaryGeneration, func(context.Context, Job) error { return nil })
	// Not started, so the single slot fills up.
	if _, err := p.Submit(Job{Kind: KindSummaryGeneration}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := p.Submit(Job{Kind: KindSummaryGeneration}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	p.Stop()
	if _, err := p.Submit(Job{Kind: KindSummaryGeneration}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestPool_HandlerPanicDoesNotKillWorker(t *testing.T) {
	p := NewPool(1, 2, 0, logger.Nop())
	done := make(chan struct{})
	calls := 0
	p.Register(KindSummaryGeneration, func(context.Context, Job) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		close(done)
		return nil
	})
	p.Start()
	defer p.Stop()

	p.Submit(Job{Kind: KindSummaryGeneration})
	p.Submit(Job{Kind: KindSummaryGeneration})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not survive panic")
	}
}
