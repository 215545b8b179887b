package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/accounts-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (d *recordingDeleter) Delete(_ context.Context, imageURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, imageURL)
	return nil
}

func (d *recordingDeleter) Deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.deleted...)
}

func cleanupEvent(t *testing.T, url string) *events.Event {
	t.Helper()
	event, err := events.NewEvent(events.TypeImageCleanup, events.ImageCleanupPayload{ImageURL: url})
	require.NoError(t, err)
	return event
}

func TestImageCleanupEventHandler_Enqueues(t *testing.T) {
	queue := NewTaskQueue(5, setupTestLogger())
	h := NewImageCleanupEventHandler(queue, &recordingDeleter{}, setupTestLogger())

	require.NoError(t, h.HandleEvent(context.Background(), cleanupEvent(t, "https://img/a.png")))

	queued := <-queue.GetChannel()
	assert.Equal(t, TaskTypeImageCleanup, queued.Type())
	assert.Equal(t, TaskStatusPending, queued.Status())
	cleanup, ok := queued.(*ImageCleanupTask)
	require.True(t, ok)
	assert.Equal(t, "https://img/a.png", cleanup.ImageURL())
}

func TestImageCleanupEventHandler_IgnoresOtherEvents(t *testing.T) {
	queue := NewTaskQueue(5, setupTestLogger())
	h := NewImageCleanupEventHandler(queue, &recordingDeleter{}, setupTestLogger())

	event, err := events.NewEvent(events.TypeIdentityOrphaned, events.ReconciliationPayload{IdentityRef: "uid"})
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Empty(t, queue.GetChannel())
}

func TestImageCleanupEventHandler_Failures(t *testing.T) {
	t.Run("queue full", func(t *testing.T) {
		queue := NewTaskQueue(1, setupTestLogger())
		h := NewImageCleanupEventHandler(queue, &recordingDeleter{}, setupTestLogger())

		require.NoError(t, h.HandleEvent(context.Background(), cleanupEvent(t, "https://img/a.png")))
		err := h.HandleEvent(context.Background(), cleanupEvent(t, "https://img/b.png"))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("empty url", func(t *testing.T) {
		queue := NewTaskQueue(1, setupTestLogger())
		h := NewImageCleanupEventHandler(queue, &recordingDeleter{}, setupTestLogger())

		assert.Error(t, h.HandleEvent(context.Background(), cleanupEvent(t, "")))
	})
}

func TestImageCleanupTask_Execute(t *testing.T) {
	deleter := &recordingDeleter{}
	task, err := NewImageCleanupTask("https://img/a.png", deleter, nil)
	require.NoError(t, err)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Equal(t, []string{"https://img/a.png"}, deleter.Deleted())

	failing, err := NewImageCleanupTask("https://img/b.png", &recordingDeleter{err: errors.New("boom")}, nil)
	require.NoError(t, err)
	assert.Error(t, failing.Execute(context.Background()))
	assert.Equal(t, TaskStatusFailed, failing.Status())

	_, err = NewImageCleanupTask("https://img/c.png", nil, nil)
	assert.Error(t, err)
}

func TestImageCleanup_EndToEnd(t *testing.T) {
	queue := NewTaskQueue(5, setupTestLogger())
	deleter := &recordingDeleter{}

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()
	defer pool.Stop()

	emitter := events.NewInMemoryEventEmitter(setupTestLogger())
	emitter.RegisterHandler(NewImageCleanupEventHandler(queue, deleter, setupTestLogger()))

	require.NoError(t, emitter.EmitEvent(context.Background(), cleanupEvent(t, "https://img/old.png")))

	assert.Eventually(t, func() bool {
		return len(deleter.Deleted()) == 1
	}, time.Second, 10*time.Millisecond)
}
