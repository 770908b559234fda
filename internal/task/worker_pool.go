package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/phrazzld/netfetch/internal/platform/metrics"
)

// ErrTaskPanicked wraps the value recovered from a panicking task.
var ErrTaskPanicked = errors.New("task panicked")

// Outcome labels reported to the metrics recorder, in addition to TaskStatus values.
const (
	outcomeFailed   = "failed"
	outcomePanicked = "panicked"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	// logger for structured logging
	logger *slog.Logger

	// hooksMu guards recorder and errorHandler, which may be replaced
	// while workers run
	hooksMu sync.RWMutex

	// recorder receives per-task outcomes
	recorder metrics.Recorder

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	startOnce sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to runtime.GOMAXPROCS(0)
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig that defers the worker
// count to the platform
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 0,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration.
// Workers are not started until Start is called.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
		logger.Debug("no worker count configured, using platform default",
			"specified_count", config.WorkerCount,
			"default_count", workerCount)
	}

	// Create a cancelable context for shutdown coordination
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:    taskQueue,
		workerCount:  workerCount,
		wg:           sync.WaitGroup{},
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
		recorder:     metrics.Nop{},
		errorHandler: nil, // Default to nil, can be set later with SetErrorHandler
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.hooksMu.Lock()
	defer p.hooksMu.Unlock()
	p.errorHandler = handler
}

// SetRecorder sets the metrics recorder. A nil recorder disables metrics.
func (p *WorkerPool) SetRecorder(recorder metrics.Recorder) {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	p.hooksMu.Lock()
	defer p.hooksMu.Unlock()
	p.recorder = recorder
}

// WorkerCount returns the number of workers the pool runs
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Start launches the worker goroutines. Calling Start more than once has no
// further effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop signals all workers to exit and waits for them. Tasks still buffered
// in the queue are left unprocessed; a task that is mid-execution sees its
// context cancelled.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until every worker has exited. Workers exit once the queue
// channel is closed and drained, or after Stop.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// worker processes tasks from the queue
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	tasks := p.taskQueue.GetChannel()
	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			// Stop may race with a buffered task; Stop wins.
			if p.ctx.Err() != nil {
				p.logger.Debug("stopping worker, dropping dequeued task",
					"worker_id", id,
					"task_id", task.ID())
				return
			}

			p.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (p *WorkerPool) processTask(task Task, workerID int) {
	logger := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Debug("processing task")
	start := time.Now()

	err := p.runTask(task, logger)
	elapsed := time.Since(start)

	p.hooksMu.RLock()
	recorder, errorHandler := p.recorder, p.errorHandler
	p.hooksMu.RUnlock()

	switch {
	case errors.Is(err, ErrTaskPanicked):
		recorder.TaskFinished(task.Type(), outcomePanicked, elapsed)
	case err != nil:
		recorder.TaskFinished(task.Type(), outcomeFailed, elapsed)
	default:
		recorder.TaskFinished(task.Type(), string(task.Status()), elapsed)
	}

	if err != nil {
		logger.Error("task execution failed", "error", err, "duration", elapsed)
		if errorHandler != nil {
			errorHandler(task, err)
		}
		return
	}

	if task.Status() == TaskStatusCancelled {
		logger.Info("task skipped, cancelled before start")
		return
	}
	logger.Debug("task completed successfully", "duration", elapsed)
}

// runTask executes task, converting a panic into ErrTaskPanicked so one
// faulty task cannot take a worker down.
func (p *WorkerPool) runTask(task Task, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task.Execute(p.ctx)
}
