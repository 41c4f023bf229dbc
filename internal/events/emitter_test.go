package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu           sync.Mutex
	LastEvent    *ChangeEvent
	HandlerError error
	HandledCount int
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewChangeEvent(t *testing.T) {
	id := uuid.New()
	event := NewChangeEvent("flashcards", OpUpdated, id)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "flashcards", event.Collection)
	assert.Equal(t, OpUpdated, event.Op)
	assert.Equal(t, []uuid.UUID{id}, event.IDs)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		err := emitter.EmitEvent(context.Background(), NewChangeEvent("notes", OpCreated))
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event := NewChangeEvent("materials", OpCreated, uuid.New())
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), NewChangeEvent("notes", OpDeleted))
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())

		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var seen []Op
		emitter.RegisterHandler(HandlerFunc(func(_ context.Context, e *ChangeEvent) error {
			seen = append(seen, e.Op)
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), NewChangeEvent("notes", OpCreated)))
		require.NoError(t, emitter.EmitEvent(context.Background(), NewChangeEvent("notes", OpDeleted)))
		assert.Equal(t, []Op{OpCreated, OpDeleted}, seen)
	})
}
