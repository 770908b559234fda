package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
	ErrNilTask     = errors.New("task cannot be nil")
)

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// TaskQueue is a bounded FIFO of pending tasks backed by a buffered channel.
type TaskQueue struct {
	mu      sync.RWMutex
	pending chan Task
	logger  *slog.Logger
	closed  bool
}

// NewTaskQueue returns a queue that holds up to capacity pending tasks.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &TaskQueue{
		pending: make(chan Task, capacity),
		logger:  logger,
	}
}

// Enqueue appends task without blocking.
func (q *TaskQueue) Enqueue(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	// Close takes the write lock, so the channel stays open for this send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.pending <- task:
		q.logger.Debug("task queued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(q.pending),
			"queue_cap", cap(q.pending))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.pending))
	}
}

// Close rejects further tasks. Tasks already buffered remain readable from
// GetChannel. Close is idempotent.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.pending)
	q.logger.Info("task queue closed", "pending", len(q.pending))
}

// GetChannel returns the channel workers drain.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.pending
}

// Len returns the number of tasks waiting for a worker.
func (q *TaskQueue) Len() int {
	return len(q.pending)
}
