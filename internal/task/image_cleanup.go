package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ImageDeleter removes a stored image by its public URL.
type ImageDeleter interface {
	Delete(ctx context.Context, imageURL string) error
}

// ImageCleanupTask deletes a profile image that no profile references.
type ImageCleanupTask struct {
	id       uuid.UUID
	imageURL string
	images   ImageDeleter
	logger   *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewImageCleanupTask creates a pending cleanup task for imageURL.
func NewImageCleanupTask(imageURL string, images ImageDeleter, logger *slog.Logger) (*ImageCleanupTask, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image cleanup: image url cannot be empty")
	}
	if images == nil {
		return nil, fmt.Errorf("image cleanup: image deleter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()
	return &ImageCleanupTask{
		id:       id,
		imageURL: imageURL,
		images:   images,
		logger:   logger.With("task_id", id, "task_type", TaskTypeImageCleanup),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ImageCleanupTask) ID() uuid.UUID { return t.id }

// Type returns TaskTypeImageCleanup
func (t *ImageCleanupTask) Type() string { return TaskTypeImageCleanup }

// ImageURL returns the public URL of the image to delete.
func (t *ImageCleanupTask) ImageURL() string { return t.imageURL }

// Status returns the current task status
func (t *ImageCleanupTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *ImageCleanupTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute deletes the image.
func (t *ImageCleanupTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	if err := t.images.Delete(ctx, t.imageURL); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("delete image: %w", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("unreferenced image deleted", "image_url", t.imageURL)
	return nil
}
