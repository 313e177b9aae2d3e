// Package worker runs AI jobs on a fixed set of goroutines so slow calls
// never block the controller.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"lectura-dashboard/internal/logger"
)

type Kind string

const (
	KindQuizGeneration    Kind = "quiz-generation"
	KindSummaryGeneration Kind = "summary-generation"
)

var (
	ErrStopped   = errors.New("worker: pool stopped")
	ErrQueueFull = errors.New("worker: queue full")
	ErrNoHandler = errors.New("worker: no handler for job kind")
)

type Job struct {
	ID        uuid.UUID
	Kind      Kind
	LectureID string
	// Token ties a quiz generation to the request that asked for it.
	Token uint64
	// Payload carries kind-specific parameters.
	Payload any
}

type Handler func(ctx context.Context, job Job) error

type Pool struct {
	mu          sync.RWMutex
	handlers    map[Kind]Handler
	queue       chan Job
	workerCount int
	jobTimeout  time.Duration
	log         *logger.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(workerCount, queueSize int, jobTimeout time.Duration, log *logger.Logger) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		handlers:    make(map[Kind]Handler),
		queue:       make(chan Job, queueSize),
		workerCount: workerCount,
		jobTimeout:  jobTimeout,
		log:         log,
		stopChan:    make(chan struct{}),
	}
}

// Register binds a handler to a job kind. Call before Start.
func (p *Pool) Register(kind Kind, h Handler) {
	p.mu.Lock()
	p.handlers[kind] = h
	p.mu.Unlock()
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("started worker goroutines", "count", p.workerCount)
}

// Stop signals workers to exit and waits for in-flight jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	p.wg.Wait()
}

// Submit enqueues a job without blocking and returns its ID.
func (p *Pool) Submit(job Job) (uuid.UUID, error) {
	select {
	case <-p.stopChan:
		return uuid.Nil, ErrStopped
	default:
	}

	p.mu.RLock()
	_, ok := p.handlers[job.Kind]
	p.mu.RUnlock()
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNoHandler, job.Kind)
	}

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	select {
	case p.queue <- job:
		return job.ID, nil
	default:
		return uuid.Nil, ErrQueueFull
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			p.log.Debug("worker shutting down", "worker", id)
			return
		case job := <-p.queue:
			p.run(id, job)
		}
	}
}

func (p *Pool) run(id int, job Job) {
	p.mu.RLock()
	h := p.handlers[job.Kind]
	p.mu.RUnlock()

	ctx := context.Background()
	var cancel context.CancelFunc = func() {}
	if p.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
	}
	defer cancel()

	log := p.log.With("worker", id, "job", job.ID, "kind", job.Kind, "lecture", job.LectureID)
	log.Debug("processing job")

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", "panic", r)
		}
	}()

	start := time.Now()
	if err := h(ctx, job); err != nil {
		log.Error("job failed", "error", err, "elapsed", time.Since(start))
		return
	}
	log.Debug("job done", "elapsed", time.Since(start))
}
