package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yourusername/tiktok-bulk-go/internal/domain"
	"go.uber.org/zap"
)

// jobRequest is one batch waiting for a worker.
type jobRequest struct {
	ctx    context.Context
	urls   []string
	result chan jobResult
}

type jobResult struct {
	res *BatchResult
	err error
}

// Dispatcher runs batch jobs on a fixed worker pool so the HTTP handlers
// never execute blocking fetch work themselves. Submit blocks until the job
// has fully finished; there is no mid-job cancellation.
type Dispatcher struct {
	runner   *BatchRunner
	config   *domain.WorkerConfig
	logger   *zap.Logger
	requests chan *jobRequest
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	workerWg sync.WaitGroup
}

// NewDispatcher creates a dispatcher backed by the given runner.
func NewDispatcher(runner *BatchRunner, config *domain.WorkerConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		config:   config,
		logger:   logger,
		requests: make(chan *jobRequest),
		stopChan: make(chan struct{}),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already running")
	}
	d.running = true
	d.mu.Unlock()

	for i := 0; i < d.config.PoolSize; i++ {
		d.workerWg.Add(1)
		go d.worker(ctx, i)
	}

	d.logger.Info("Dispatcher started", zap.Int("workers", d.config.PoolSize))
	return nil
}

// Stop shuts the pool down, waiting for in-flight jobs to finish.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher not running")
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopChan)
	d.workerWg.Wait()

	d.logger.Info("Dispatcher stopped")
	return nil
}

// IsRunning returns whether the worker pool is accepting jobs.
func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Submit hands a validated URL list to the pool and waits for the result.
// The caller's context gates admission only; an accepted job runs on a
// detached context and the wait for it is unconditional, so a caller that
// has gone away can neither cancel the batch nor skip its cleanup.
func (d *Dispatcher) Submit(ctx context.Context, urls []string) (*BatchResult, error) {
	if !d.IsRunning() {
		return nil, errors.New("dispatcher not running")
	}

	req := &jobRequest{
		ctx:    context.WithoutCancel(ctx),
		urls:   urls,
		result: make(chan jobResult, 1),
	}

	select {
	case d.requests <- req:
	case <-d.stopChan:
		return nil, errors.New("dispatcher shutting down")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	out := <-req.result
	return out.res, out.err
}

// worker consumes job requests until the pool shuts down.
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.workerWg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		case req := <-d.requests:
			res, err := d.runner.Run(req.ctx, req.urls)
			observeJobOutcome(res, err)
			if err != nil {
				d.logger.Warn("Batch job failed",
					zap.Int("worker", id),
					zap.Error(err))
			}
			req.result <- jobResult{res: res, err: err}
		}
	}
}
