package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/accounts-api/internal/events"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
)

// ImageCleanupEventHandler implements events.EventHandler by turning
// image.cleanup events into ImageCleanupTasks on a queue. It never waits for
// the deletion itself.
type ImageCleanupEventHandler struct {
	queue  TaskQueueWriter
	images ImageDeleter
	logger *slog.Logger
}

// NewImageCleanupEventHandler creates a handler that enqueues cleanup tasks
// executed against images.
func NewImageCleanupEventHandler(queue TaskQueueWriter, images ImageDeleter, log *slog.Logger) *ImageCleanupEventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ImageCleanupEventHandler{
		queue:  queue,
		images: images,
		logger: log.With("component", "image_cleanup_event_handler"),
	}
}

// HandleEvent enqueues a cleanup task for image.cleanup events and ignores
// every other type.
func (h *ImageCleanupEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if event.Type != events.TypeImageCleanup {
		log.DebugContext(ctx, "ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.ImageCleanupPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := NewImageCleanupTask(payload.ImageURL, h.images, h.logger)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.queue.Enqueue(task); err != nil {
		log.WarnContext(ctx, "image cleanup not scheduled",
			"error", err,
			"event_id", event.ID,
			"image_url", payload.ImageURL)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.DebugContext(ctx, "image cleanup scheduled",
		"task_id", task.ID(),
		"event_id", event.ID)
	return nil
}
