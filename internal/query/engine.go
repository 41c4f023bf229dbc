package query

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/store"
)

// SnapshotSource provides consistent copies of the library.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// Engine answers queries against the current library state.
type Engine struct {
	source SnapshotSource
	now    func() time.Time
}

// NewEngine creates an Engine. A nil clock uses the current UTC time.
func NewEngine(source SnapshotSource, now func() time.Time) *Engine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{source: source, now: now}
}

// Due returns the cards due now.
func (e *Engine) Due() []domain.Flashcard {
	return Due(e.source.Snapshot().Flashcards, e.now())
}

// Decks returns the decks of the cards matching filter.
func (e *Engine) Decks(filter string) []Deck {
	return Decks(e.source.Snapshot().Flashcards, filter, e.now())
}

// Search returns the cards matching text.
func (e *Engine) Search(text string) []domain.Flashcard {
	return Filter(e.source.Snapshot().Flashcards, text)
}

// Starred returns the starred cards.
func (e *Engine) Starred() []domain.Flashcard {
	return Starred(e.source.Snapshot().Flashcards)
}

// NextDue returns the card that has been due the longest.
func (e *Engine) NextDue() (domain.Flashcard, bool) {
	return NextDue(e.source.Snapshot().Flashcards, e.now())
}

// MaterialDetail returns a material with its artifacts.
func (e *Engine) MaterialDetail(id uuid.UUID) (MaterialDetail, bool) {
	return ForMaterial(e.source.Snapshot(), id)
}

// Stats summarizes the library now.
func (e *Engine) Stats() Stats {
	return Summarize(e.source.Snapshot(), e.now())
}
