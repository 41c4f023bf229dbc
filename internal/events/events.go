package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Op names the kind of change a ChangeEvent describes.
type Op string

// Change operations
const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
	OpLoaded  Op = "loaded"
)

// ChangeEvent describes one committed mutation of a single collection.
// A cascading delete produces one event per affected collection.
type ChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Collection is the persisted key of the collection that changed
	Collection string `json:"collection"`

	Op Op `json:"op"`

	// IDs lists the entities touched by the change
	IDs []uuid.UUID `json:"ids"`

	OccurredAt time.Time `json:"occurredAt"`
}

// NewChangeEvent creates a ChangeEvent stamped with a fresh ID and the current time.
func NewChangeEvent(collection string, op Op, ids ...uuid.UUID) *ChangeEvent {
	return &ChangeEvent{
		ID:         uuid.New(),
		Collection: collection,
		Op:         op,
		IDs:        ids,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *ChangeEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ChangeEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ChangeEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	RegisterHandler(handler EventHandler)
	EmitEvent(ctx context.Context, event *ChangeEvent) error
}
