package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// QuestionType tags the answer format of a quiz question.
type QuestionType string

// Possible question type values
const (
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeShortAnswer    QuestionType = "shortAnswer"
	QuestionTypeTrueFalse      QuestionType = "trueFalse"
	QuestionTypeFillInBlank    QuestionType = "fillInBlank"
	QuestionTypeEssay          QuestionType = "essay"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeShortAnswer, QuestionTypeTrueFalse,
		QuestionTypeFillInBlank, QuestionTypeEssay:
		return true
	default:
		return false
	}
}

// Difficulty is the coarse difficulty tag attached to a question.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Question is a quiz question derived from a material.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	MaterialID    uuid.UUID    `json:"materialId"`
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
	Source        string       `json:"source,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// NewQuestion creates a new Question with a fresh ID and creation timestamp.
// Options are only kept for multiple choice questions.
func NewQuestion(
	materialID uuid.UUID,
	text string,
	typ QuestionType,
	options []string,
	correctAnswer, explanation string,
	difficulty Difficulty,
) (*Question, error) {
	q := &Question{
		ID:            uuid.New(),
		MaterialID:    materialID,
		Question:      text,
		Type:          typ,
		CorrectAnswer: correctAnswer,
		Explanation:   explanation,
		Difficulty:    difficulty,
		CreatedAt:     time.Now().UTC(),
	}
	if typ == QuestionTypeMultipleChoice {
		q.Options = slices.Clone(options)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks if the Question has valid data.
func (q *Question) Validate() error {
	if q.ID == uuid.Nil {
		return invalid(ErrEmptyID)
	}

	if q.MaterialID == uuid.Nil {
		return invalid(ErrEmptyMaterialID)
	}

	if q.Question == "" {
		return invalid(ErrEmptyContent)
	}

	if !q.Type.Valid() {
		return invalid(ErrInvalidQuestionType)
	}

	if !q.Difficulty.Valid() {
		return invalid(ErrInvalidDifficulty)
	}

	// Options exist only for multiple choice, and the answer must be one of them.
	if q.Type == QuestionTypeMultipleChoice {
		if len(q.Options) < 2 || !slices.Contains(q.Options, q.CorrectAnswer) {
			return invalid(ErrInvalidOptions)
		}
	} else if len(q.Options) > 0 {
		return invalid(ErrInvalidOptions)
	}

	return nil
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Options = slices.Clone(q.Options)
	return out
}
