package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is a task's position in its lifecycle:
// created, then running, then completed or cancelled.
type TaskStatus string

const (
	TaskStatusCreated   TaskStatus = "created"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskTypeFetch labels FetchTask in logs and metrics.
const TaskTypeFetch = "fetch"

// Task is a unit of work a Queue hands to one of its workers.
type Task interface {
	// ID identifies the task in logs.
	ID() uuid.UUID

	// Type labels the task in logs and metrics.
	Type() string

	Status() TaskStatus

	// Execute runs the task on a worker. A task that was cancelled before
	// Execute is called returns nil without doing any work.
	Execute(ctx context.Context) error

	// Cancel flags the task. It may be called from any goroutine at any
	// time, but only prevents work that has not started.
	Cancel()

	IsCancelled() bool
}

// TaskQueueReader is the consuming side of a queue, used by workers.
type TaskQueueReader interface {
	// GetChannel yields tasks in submission order and is closed once the
	// queue is closed and drained.
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producing side of a queue.
type TaskQueueWriter interface {
	// Enqueue hands task to the queue without blocking. It fails with
	// ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error

	// Close rejects further tasks. Buffered tasks stay readable.
	Close()
}
