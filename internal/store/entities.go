package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studyhall/internal/domain"
)

// Question returns a copy of the question with the given id.
func (l *Library) Question(id uuid.UUID) (domain.Question, bool) {
	return get(l, questions, id)
}

// AddQuestion appends q. Its material must exist.
func (l *Library) AddQuestion(ctx context.Context, q domain.Question) error {
	return add(ctx, l, questions, q)
}

// UpdateQuestion replaces the question with q's ID; false when there is none.
func (l *Library) UpdateQuestion(ctx context.Context, q domain.Question) (bool, error) {
	return update(ctx, l, questions, q)
}

// DeleteQuestion removes a question; false when there is none.
func (l *Library) DeleteQuestion(ctx context.Context, id uuid.UUID) (bool, error) {
	return remove(ctx, l, questions, id)
}

// Flashcard returns a copy of the flashcard with the given id.
func (l *Library) Flashcard(id uuid.UUID) (domain.Flashcard, bool) {
	return get(l, flashcards, id)
}

// AddFlashcard appends c. Its material must exist.
func (l *Library) AddFlashcard(ctx context.Context, c domain.Flashcard) error {
	return add(ctx, l, flashcards, c)
}

// UpdateFlashcard replaces the flashcard with c's ID; false when there is none.
func (l *Library) UpdateFlashcard(ctx context.Context, c domain.Flashcard) (bool, error) {
	return update(ctx, l, flashcards, c)
}

// ModifyFlashcard applies fn to the stored card under the write lock, so
// concurrent reviews of the same card never lose an update.
func (l *Library) ModifyFlashcard(
	ctx context.Context,
	id uuid.UUID,
	fn func(domain.Flashcard) (domain.Flashcard, error),
) (domain.Flashcard, bool, error) {
	return modify(ctx, l, flashcards, id, fn)
}

// DeleteFlashcard removes a flashcard; false when there is none.
func (l *Library) DeleteFlashcard(ctx context.Context, id uuid.UUID) (bool, error) {
	return remove(ctx, l, flashcards, id)
}

// Note returns a copy of the note with the given id.
func (l *Library) Note(id uuid.UUID) (domain.Note, bool) {
	return get(l, notes, id)
}

// AddNote appends n. Its material must exist.
func (l *Library) AddNote(ctx context.Context, n domain.Note) error {
	return add(ctx, l, notes, n)
}

// UpdateNote replaces the note with n's ID; false when there is none.
func (l *Library) UpdateNote(ctx context.Context, n domain.Note) (bool, error) {
	return update(ctx, l, notes, n)
}

// DeleteNote removes a note; false when there is none.
func (l *Library) DeleteNote(ctx context.Context, id uuid.UUID) (bool, error) {
	return remove(ctx, l, notes, id)
}
