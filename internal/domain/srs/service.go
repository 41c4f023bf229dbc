package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/studyhall/internal/domain"
)

// ErrInvalidDays is returned when a postponement is shorter than one day.
var ErrInvalidDays = errors.New("postpone days must be at least 1")

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Review computes the card's next scheduling state for a 0-5 quality
	// rating given at now. Ratings outside the range are clamped.
	Review(card domain.Flashcard, quality int, now time.Time) domain.Flashcard

	// Postpone pushes the next review date forward by a number of whole days.
	Postpone(card domain.Flashcard, days int, now time.Time) (domain.Flashcard, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Review implements Service.
func (s *defaultService) Review(card domain.Flashcard, quality int, now time.Time) domain.Flashcard {
	return calculateNextCard(card, quality, now, s.params)
}

// Postpone implements Service.
func (s *defaultService) Postpone(card domain.Flashcard, days int, now time.Time) (domain.Flashcard, error) {
	if days < 1 {
		return card, ErrInvalidDays
	}

	next := card.Clone()
	// An overdue card is postponed relative to now, not to its stale due date.
	base := card.NextReviewDate
	if base.Before(now) {
		base = now.UTC()
	}
	next.NextReviewDate = base.AddDate(0, 0, days)

	// The interval stretches so that the due date stays anchored to the last
	// review, or to creation for a card never reviewed.
	anchor := card.CreatedAt
	if card.LastReviewDate != nil {
		anchor = *card.LastReviewDate
	}
	interval := next.NextReviewDate.Sub(anchor)
	if interval > MaxInterval {
		return card, ErrInvalidDays
	}
	if interval > 0 {
		next.Interval = interval
	}

	return next, nil
}
