package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Name() string
	Process(ctx context.Context) error
}

var (
	// ErrQueueFull is returned by Enqueue when the queue has no free slot
	ErrQueueFull = errors.New(ErrMsgQueueFull)
	// ErrPoolStopped is returned by Enqueue after Stop
	ErrPoolStopped = errors.New(ErrMsgPoolStopped)
)

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
}

// NewPool creates a new worker pool
func NewPool(workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
	}
}

// Start starts the workers. Jobs run with a context derived from ctx, so
// they inherit its logger and are cancelled by Stop.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.jobQueue {
		if ctx.Err() != nil {
			logger.FromContext(ctx).Warn(LogMsgJobDropped, "job", job.Name())
			continue
		}
		if err := job.Process(ctx); err != nil {
			logger.FromContext(ctx).Error(LogMsgWorkerJobFailed, "job", job.Name(), "error", err)
		}
	}
}

// Enqueue adds a job without blocking
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs, cancels running ones and waits for the workers.
// Jobs still queued are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}
