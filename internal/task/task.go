package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle stage of a background task.
type TaskStatus string

// Task lifecycle stages. A task moves from pending to processing and ends
// completed or failed.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeImageCleanup identifies tasks that delete an unreferenced profile
// image.
const TaskTypeImageCleanup = "image_cleanup"

// Task is a unit of in-memory background work run by the WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string
	Status() TaskStatus

	// Execute runs the work. The context carries the pool's per-task timeout.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consumer side of a queue.
type TaskQueueReader interface {
	// GetChannel yields queued tasks until the queue is closed and drained.
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producer side of a queue.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking. It fails with ErrQueueFull or
	// ErrQueueClosed.
	Enqueue(task Task) error

	// Close stops further submission. Queued tasks remain readable.
	Close()
}
