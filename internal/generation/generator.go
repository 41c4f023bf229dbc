package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/studyhall/internal/domain"
)

// Generator produces study artifacts. Implementations must honor context
// cancellation and return their results as fresh values the caller owns.
type Generator interface {
	// Flashcards derives review cards from the material.
	Flashcards(ctx context.Context, material domain.Material) ([]domain.Flashcard, error)

	// Questions derives quiz questions from the material.
	Questions(ctx context.Context, material domain.Material) ([]domain.Question, error)

	// Note summarizes the material into a study note.
	Note(ctx context.Context, material domain.Material) (domain.Note, error)

	// Reply answers the learner's latest prompt in a tutoring session.
	Reply(ctx context.Context, req ReplyRequest) (string, error)
}

// ReplyRequest is everything a tutor reply may draw on.
type ReplyRequest struct {
	Session domain.TutorSession
	// Material is the session's linked material, when it has one.
	Material *domain.Material
	Prompt   string
}

// ContextError converts a context failure into the package's error values.
// It returns nil when ctx is still live.
func ContextError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
}
