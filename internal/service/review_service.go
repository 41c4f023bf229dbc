package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/platform/logger"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/store"
)

// CardStore is the part of the library the review service needs.
type CardStore interface {
	Snapshot() store.Snapshot
	ModifyFlashcard(
		ctx context.Context,
		id uuid.UUID,
		fn func(domain.Flashcard) (domain.Flashcard, error),
	) (domain.Flashcard, bool, error)
}

// ReviewService schedules flashcard reviews.
type ReviewService struct {
	store  CardStore
	srs    srs.Service
	now    func() time.Time
	logger *slog.Logger
}

// NewReviewService creates a ReviewService. A nil srs service uses the
// default parameters.
func NewReviewService(st CardStore, srsService srs.Service, log *slog.Logger) *ReviewService {
	if st == nil {
		panic("card store cannot be nil")
	}
	if srsService == nil {
		srsService = srs.NewDefaultService()
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReviewService{
		store:  st,
		srs:    srsService,
		now:    time.Now,
		logger: log.With(slog.String("component", "review_service")),
	}
}

// Review records a recall quality (0-5, clamped) for the card and returns the
// rescheduled card.
func (s *ReviewService) Review(ctx context.Context, cardID uuid.UUID, quality int) (domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	card, err := s.modify(ctx, "review", cardID, func(c domain.Flashcard) (domain.Flashcard, error) {
		return s.srs.Review(c, quality, now), nil
	})
	if err != nil {
		return domain.Flashcard{}, err
	}

	log.Debug("card reviewed",
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality),
		slog.Duration("interval", card.Interval),
		slog.Time("next_review", card.NextReviewDate))
	return card, nil
}

// ReviewOutcome reviews the card with one of the named answer buttons.
func (s *ReviewService) ReviewOutcome(ctx context.Context, cardID uuid.UUID, outcome srs.Outcome) (domain.Flashcard, error) {
	quality, err := outcome.Quality()
	if err != nil {
		return domain.Flashcard{}, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}
	return s.Review(ctx, cardID, quality)
}

// Postpone pushes the card's next review back by the given number of days.
func (s *ReviewService) Postpone(ctx context.Context, cardID uuid.UUID, days int) (domain.Flashcard, error) {
	now := s.now()
	return s.modify(ctx, "postpone", cardID, func(c domain.Flashcard) (domain.Flashcard, error) {
		return s.srs.Postpone(c, days, now)
	})
}

// SetStarred marks or unmarks the card as starred.
func (s *ReviewService) SetStarred(ctx context.Context, cardID uuid.UUID, starred bool) (domain.Flashcard, error) {
	return s.modify(ctx, "star", cardID, func(c domain.Flashcard) (domain.Flashcard, error) {
		c.IsStarred = starred
		return c, nil
	})
}

// NextDue returns the most overdue card.
func (s *ReviewService) NextDue(context.Context) (domain.Flashcard, error) {
	card, ok := query.NextDue(s.store.Snapshot().Flashcards, s.now())
	if !ok {
		return domain.Flashcard{}, ErrNoCardsDue
	}
	return card, nil
}

func (s *ReviewService) modify(
	ctx context.Context,
	op string,
	cardID uuid.UUID,
	fn func(domain.Flashcard) (domain.Flashcard, error),
) (domain.Flashcard, error) {
	card, ok, err := s.store.ModifyFlashcard(ctx, cardID, fn)
	switch {
	case errors.Is(err, srs.ErrInvalidDays):
		return domain.Flashcard{}, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	case err != nil:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card",
			slog.String("operation", op),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return domain.Flashcard{}, NewServiceError(op, "failed to update card", err)
	case !ok:
		return domain.Flashcard{}, ErrCardNotFound
	}
	return card, nil
}
