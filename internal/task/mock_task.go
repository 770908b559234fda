package task

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTask is a simple implementation of the Task interface for testing.
// It honours cancellation the same way FetchTask does.
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	ExecuteFn func(ctx context.Context) error

	cancelled atomic.Bool
	mu        sync.Mutex
	status    TaskStatus
	executed  int
}

// NewMockTask creates a new MockTask with the given type and execute function.
// A nil fn succeeds immediately.
func NewMockTask(taskType string, fn func(ctx context.Context) error) *MockTask {
	if fn == nil {
		fn = func(ctx context.Context) error { return nil }
	}
	return &MockTask{
		TaskID:    uuid.New(),
		TaskType:  taskType,
		ExecuteFn: fn,
		status:    TaskStatusCreated,
	}
}

// ID returns the task's unique identifier
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Status returns the current task status
func (t *MockTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Execute runs ExecuteFn unless the task was cancelled
func (t *MockTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.executed++
	if t.cancelled.Load() {
		t.status = TaskStatusCancelled
		t.mu.Unlock()
		return nil
	}
	t.status = TaskStatusRunning
	t.mu.Unlock()

	err := t.ExecuteFn(ctx)

	t.mu.Lock()
	t.status = TaskStatusCompleted
	t.mu.Unlock()
	return err
}

// Cancel flags the task as cancelled
func (t *MockTask) Cancel() {
	t.cancelled.Store(true)
}

// IsCancelled reports whether Cancel has been called
func (t *MockTask) IsCancelled() bool {
	return t.cancelled.Load()
}

// ExecuteCount returns how many times Execute was called
func (t *MockTask) ExecuteCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executed
}
