package srs

import (
	"math"
	"time"

	"github.com/phrazzld/studyhall/internal/domain"
)

// clampQuality restricts a rating to the closed range [0, params.MaxQuality].
// Out of range ratings are never rejected.
func clampQuality(quality int, params *Params) int {
	if quality < 0 {
		return 0
	}
	if quality > params.MaxQuality {
		return params.MaxQuality
	}
	return quality
}

// calculateNewEaseFactor applies the SM-2 ease update
//
//	ef' = max(min, ef + 0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// for both passing and failing ratings.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(params.MaxQuality - quality)
	newEF := currentEF + 0.1 - miss*(0.08+miss*0.02)

	return math.Max(params.MinEaseFactor, newEF)
}

// calculateNewInterval determines the next interval from the repetition count
// before this review and the ease factor before this review.
//
// Algorithm behavior:
//   - failed rating: the interval resets to params.FailInterval
//   - first pass: params.FirstInterval
//   - second consecutive pass: params.SecondInterval
//   - later passes: previous interval multiplied by the ease factor, rounded to the second
func calculateNewInterval(
	currentInterval time.Duration,
	repetitions int,
	easeFactor float64,
	quality int,
	params *Params,
) time.Duration {
	if quality < params.PassThreshold {
		return params.FailInterval
	}

	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	}

	scaled := float64(currentInterval) * easeFactor
	if scaled >= float64(MaxInterval) {
		return MaxInterval
	}
	next := time.Duration(scaled).Round(time.Second)
	if next <= 0 {
		// A corrupted card with a zero interval still has to move forward.
		return params.FirstInterval
	}
	return next
}

// calculateDifficulty maps a rating onto a normalized difficulty estimate:
// a perfect rating is 0 and a complete blackout is 1.
func calculateDifficulty(quality int, params *Params) float64 {
	return float64(params.MaxQuality-quality) / float64(params.MaxQuality)
}

// calculateNextCard returns the card's scheduling state after a review at now.
//
// The input card is copied, never modified: callers write the returned value
// back through the store themselves.
func calculateNextCard(
	card domain.Flashcard,
	quality int,
	now time.Time,
	params *Params,
) domain.Flashcard {
	q := clampQuality(quality, params)
	next := card.Clone()

	next.Interval = calculateNewInterval(card.Interval, card.Repetitions, card.EaseFactor, q, params)
	if q >= params.PassThreshold {
		next.Repetitions = card.Repetitions + 1
	} else {
		next.Repetitions = 0
	}

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, q, params)
	next.Difficulty = calculateDifficulty(q, params)

	reviewedAt := now.UTC()
	next.LastReviewDate = &reviewedAt
	next.NextReviewDate = reviewedAt.Add(next.Interval)

	return next
}
