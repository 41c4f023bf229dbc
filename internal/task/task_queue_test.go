package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
	execFn   func(ctx context.Context) error
}

func (m *mockTask) ID() uuid.UUID      { return m.id }
func (m *mockTask) Type() string       { return m.taskType }
func (m *mockTask) Payload() []byte    { return m.payload }
func (m *mockTask) Status() TaskStatus { return m.status }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
		payload:  []byte("test payload"),
		status:   TaskStatusPending,
	}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, q.Enqueue(newMockTask()))
	require.NoError(t, q.Enqueue(newMockTask()))
	assert.Equal(t, 2, q.Len())

	err := q.Enqueue(newMockTask())
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueue_Close(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(2, setupTestLogger())
	task := newMockTask()
	require.NoError(t, q.Enqueue(task))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(newMockTask()), ErrQueueClosed)

	// Already queued tasks stay readable after close.
	got, ok := <-q.GetChannel()
	require.True(t, ok)
	assert.Equal(t, task.ID(), got.ID())
	_, ok = <-q.GetChannel()
	assert.False(t, ok)
}

func TestTaskQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(100, setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Enqueue(newMockTask())
			if err != nil {
				assert.ErrorIs(t, err, ErrQueueClosed)
			}
		}()
	}
	q.Close()
	wg.Wait()
}

func TestTaskQueue_NegativeSize(t *testing.T) {
	t.Parallel()
	q := NewTaskQueue(-1, nil)
	assert.ErrorIs(t, q.Enqueue(newMockTask()), ErrQueueFull)
}
