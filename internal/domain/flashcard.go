package domain

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultInterval is the review interval of a card that has never been reviewed.
	DefaultInterval = 24 * time.Hour

	// DefaultEaseFactor is the ease factor assigned to new cards.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor every ease factor is clamped to.
	MinEaseFactor = 1.3

	// UnratedDifficulty is the difficulty estimate of a card that has never been reviewed.
	UnratedDifficulty = 0.5
)

// Flashcard is a two-sided card scheduled for review with a spaced
// repetition algorithm.
//
// Invariants: EaseFactor >= MinEaseFactor, Interval > 0, Repetitions >= 0,
// Difficulty within [0,1]. NextReviewDate is LastReviewDate+Interval once the
// card has been reviewed and CreatedAt+DefaultInterval before that.
type Flashcard struct {
	ID             uuid.UUID     `json:"id"`
	MaterialID     uuid.UUID     `json:"materialId"`
	Front          string        `json:"front"`
	Back           string        `json:"back"`
	Tags           []string      `json:"tags"`
	Difficulty     float64       `json:"difficulty"`
	Interval       time.Duration `json:"interval"`
	Repetitions    int           `json:"repetitions"`
	EaseFactor     float64       `json:"easeFactor"`
	NextReviewDate time.Time     `json:"nextReviewDate"`
	LastReviewDate *time.Time    `json:"lastReviewDate,omitempty"`
	IsStarred      bool          `json:"isStarred"`
	CreatedAt      time.Time     `json:"createdAt"`
	Source         string        `json:"source,omitempty"`
}

// NewFlashcard creates a new, never reviewed Flashcard due one default
// interval after creation.
func NewFlashcard(materialID uuid.UUID, front, back string, tags []string) (*Flashcard, error) {
	now := time.Now().UTC()
	c := &Flashcard{
		ID:             uuid.New(),
		MaterialID:     materialID,
		Front:          front,
		Back:           back,
		Tags:           normalizeTags(tags),
		Difficulty:     UnratedDifficulty,
		Interval:       DefaultInterval,
		EaseFactor:     DefaultEaseFactor,
		NextReviewDate: now.Add(DefaultInterval),
		CreatedAt:      now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the card's identity, content and scheduling invariants.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if c.MaterialID == uuid.Nil {
		return invalid(ErrEmptyMaterialID)
	}

	if c.Front == "" || c.Back == "" {
		return invalid(ErrEmptyContent)
	}

	if c.EaseFactor < MinEaseFactor {
		return invalid(ErrInvalidEaseFactor)
	}

	if c.Interval <= 0 {
		return invalid(ErrInvalidInterval)
	}

	if c.Repetitions < 0 {
		return invalid(ErrInvalidRepetitions)
	}

	if c.Difficulty < 0 || c.Difficulty > 1 || math.IsNaN(c.Difficulty) {
		return invalid(ErrInvalidCardDifficulty)
	}

	return nil
}

// IsDue reports whether the card's next review date has been reached at now.
func (c Flashcard) IsDue(now time.Time) bool {
	return !c.NextReviewDate.After(now)
}

// PrimaryTag returns the card's first tag, or "" when it has none.
func (c Flashcard) PrimaryTag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	return c.Tags[0]
}

// ToggleStar returns a copy of the card with its starred flag flipped.
func (c Flashcard) ToggleStar() Flashcard {
	out := c.Clone()
	out.IsStarred = !c.IsStarred
	return out
}

// WithContent returns a copy of the card with new front, back and tags.
// Scheduling state is left untouched.
func (c Flashcard) WithContent(front, back string, tags []string) Flashcard {
	out := c.Clone()
	out.Front = front
	out.Back = back
	out.Tags = normalizeTags(tags)
	return out
}

// Clone returns a deep copy of the card.
func (c Flashcard) Clone() Flashcard {
	out := c
	out.Tags = slices.Clone(c.Tags)
	if c.LastReviewDate != nil {
		at := *c.LastReviewDate
		out.LastReviewDate = &at
	}
	return out
}

// flashcardAlias drops the JSON methods so the default encoding can be reused.
type flashcardAlias Flashcard

// MarshalJSON encodes the interval as seconds, which is how saved libraries
// store it.
func (c Flashcard) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		flashcardAlias
		Interval float64 `json:"interval"`
	}{
		flashcardAlias: flashcardAlias(c),
		Interval:       c.Interval.Seconds(),
	})
}

// UnmarshalJSON decodes a card whose interval is stored in seconds.
func (c *Flashcard) UnmarshalJSON(data []byte) error {
	aux := struct {
		*flashcardAlias
		Interval float64 `json:"interval"`
	}{
		flashcardAlias: (*flashcardAlias)(c),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Interval = time.Duration(math.Round(aux.Interval * float64(time.Second)))
	return nil
}
