package task

import (
	"log/slog"
	"sync"

	"github.com/phrazzld/netfetch/internal/platform/metrics"
)

// QueueConfig holds configuration for a Queue
type QueueConfig struct {
	// WorkerCount determines how many tasks run concurrently
	// If zero or negative, the platform default is used
	WorkerCount int

	// Size determines the buffer size for pending tasks
	Size int
}

// DefaultQueueConfig returns a QueueConfig with reasonable defaults
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		WorkerCount: 0,
		Size:        1024,
	}
}

// Queue runs submitted tasks on a pool of workers. Tasks start in
// submission order; their completions are unordered.
type Queue struct {
	tasks    *TaskQueue
	pool     *WorkerPool
	logger   *slog.Logger
	recorder metrics.Recorder

	shutdownOnce sync.Once
}

// NewQueue creates a Queue and starts its workers. A nil recorder disables
// metrics.
func NewQueue(config QueueConfig, logger *slog.Logger, recorder metrics.Recorder) *Queue {
	if config.Size <= 0 {
		config.Size = DefaultQueueConfig().Size
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	logger = logger.With("component", "task_queue")
	tasks := NewTaskQueue(config.Size, logger)
	pool := NewWorkerPool(tasks, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	pool.SetRecorder(recorder)
	pool.Start()

	return &Queue{
		tasks:    tasks,
		pool:     pool,
		logger:   logger,
		recorder: recorder,
	}
}

// Submit enqueues task for execution. It returns ErrQueueFull or
// ErrQueueClosed (possibly wrapped) if the task was not accepted.
func (q *Queue) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	err := q.tasks.Enqueue(task)
	q.recorder.TaskSubmitted(task.Type(), err == nil)
	if err != nil {
		q.logger.Warn("task rejected",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
		return err
	}
	return nil
}

// SetErrorHandler sets a handler called when a task returns an error
func (q *Queue) SetErrorHandler(handler func(task Task, err error)) {
	q.pool.SetErrorHandler(handler)
}

// WorkerCount returns the number of concurrent workers
func (q *Queue) WorkerCount() int {
	return q.pool.WorkerCount()
}

// Pending returns the number of tasks waiting for a worker
func (q *Queue) Pending() int {
	return q.tasks.Len()
}

// Shutdown stops accepting tasks, lets workers finish everything already
// queued, and waits for them. It is safe to call more than once.
func (q *Queue) Shutdown() {
	q.shutdownOnce.Do(func() {
		q.logger.Info("shutting down task queue", "pending", q.tasks.Len())
		q.tasks.Close()
		q.pool.Wait()
		q.pool.Stop()
	})
}

// Stop stops accepting tasks and abandons those still queued. Tasks that
// are mid-execution see their context cancelled.
func (q *Queue) Stop() {
	q.pool.Stop()
	q.tasks.Close()
}
