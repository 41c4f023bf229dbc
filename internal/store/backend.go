package store

import "context"

// Keys under which the collections are persisted. They are part of the
// on-disk format and must not change.
const (
	KeyMaterials     = "materials"
	KeyQuestions     = "questions"
	KeyFlashcards    = "flashcards"
	KeyNotes         = "notes"
	KeyTutorSessions = "tutorSessions"
	KeyCurrentUser   = "currentUser"
)

// Keys lists every persisted key in a stable order.
var Keys = []string{
	KeyMaterials,
	KeyQuestions,
	KeyFlashcards,
	KeyNotes,
	KeyTutorSessions,
	KeyCurrentUser,
}

// Backend is a durable key-value store holding one encoded value per key.
type Backend interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// PutBatch writes every entry or none of them.
	PutBatch(ctx context.Context, entries map[string][]byte) error

	Close() error
}
