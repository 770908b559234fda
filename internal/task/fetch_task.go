package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/netfetch/internal/fetch"
)

// Common errors
var (
	ErrNilInvoker          = errors.New("invoker cannot be nil")
	ErrNilLogger           = errors.New("logger cannot be nil")
	ErrTaskAlreadyExecuted = errors.New("task has already been executed")
)

// FetchTask implements the Task interface for a single fetch-and-decode
// request. It forwards the invoker's Result to its completion callback.
//
// A FetchTask cancelled before a worker picks it up never invokes its
// Invoker and never calls its completion callback. Cancelling after that
// point has no effect on the request.
type FetchTask[T any] struct {
	id         uuid.UUID
	invoker    *fetch.Invoker[T]
	completion func(fetch.Result[T])
	logger     *slog.Logger

	cancelled atomic.Bool
	started   atomic.Bool

	mu       sync.Mutex
	status   TaskStatus
	onCancel func()
}

// NewFetchTask creates a task that runs invoker when executed. completion
// may be nil.
func NewFetchTask[T any](
	invoker *fetch.Invoker[T],
	completion func(fetch.Result[T]),
	logger *slog.Logger,
) (*FetchTask[T], error) {
	if invoker == nil {
		return nil, ErrNilInvoker
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	id := uuid.New()
	return &FetchTask[T]{
		id:         id,
		invoker:    invoker,
		completion: completion,
		logger:     logger.With("task_id", id, "task_type", TaskTypeFetch, "url", invoker.URL()),
		status:     TaskStatusCreated,
	}, nil
}

// ID returns the task's unique identifier
func (t *FetchTask[T]) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *FetchTask[T]) Type() string {
	return TaskTypeFetch
}

// Status returns the current task status
func (t *FetchTask[T]) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *FetchTask[T]) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// SetCancelHandler registers fn to run the first time Cancel is called.
func (t *FetchTask[T]) SetCancelHandler(fn func()) {
	t.mu.Lock()
	t.onCancel = fn
	t.mu.Unlock()
}

// Cancel flags the task as cancelled. Only the first call has an effect.
func (t *FetchTask[T]) Cancel() {
	if !t.cancelled.CompareAndSwap(false, true) {
		return
	}

	t.logger.Debug("task cancelled", "started", t.started.Load())

	t.mu.Lock()
	fn := t.onCancel
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// IsCancelled reports whether Cancel has been called
func (t *FetchTask[T]) IsCancelled() bool {
	return t.cancelled.Load()
}

// Execute runs the fetch and waits for its Result, which it passes to the
// completion callback. The returned error is the Result's failure, if any.
// If ctx ends first Execute returns early; the callback still fires once
// the request finishes.
func (t *FetchTask[T]) Execute(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrTaskAlreadyExecuted
	}

	if t.cancelled.Load() {
		t.setStatus(TaskStatusCancelled)
		t.logger.Info("task cancelled before start, skipping fetch")
		return nil
	}

	t.setStatus(TaskStatusRunning)
	t.logger.Debug("executing fetch task")

	done := make(chan fetch.Result[T], 1)
	err := t.invoker.Invoke(func(result fetch.Result[T]) {
		t.setStatus(TaskStatusCompleted)
		if t.completion != nil {
			t.completion(result)
		}
		done <- result
	})
	if err != nil {
		t.setStatus(TaskStatusCompleted)
		t.logger.Error("fetch could not start", "error", err)
		return fmt.Errorf("failed to start fetch: %w", err)
	}

	select {
	case result := <-done:
		return result.Err()
	case <-ctx.Done():
		t.logger.Warn("stopped waiting for fetch", "error", ctx.Err())
		return fmt.Errorf("fetch still in flight: %w", ctx.Err())
	}
}
