package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Entity-specific errors below wrap it so callers can test for either.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyID is returned when an entity ID is the nil UUID.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrEmptyMaterialID is returned when a required material reference is missing.
	ErrEmptyMaterialID = errors.New("material ID cannot be empty")

	// ErrEmptyTitle is returned when a required title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidMaterialType is returned for an unknown material type tag.
	ErrInvalidMaterialType = errors.New("invalid material type")

	// ErrInvalidQuestionType is returned for an unknown question type tag.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrInvalidDifficulty is returned for an unknown difficulty tag.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidOptions is returned when answer options do not match the question type.
	ErrInvalidOptions = errors.New("invalid answer options")

	// ErrInvalidTutorMode is returned for an unknown tutor mode tag.
	ErrInvalidTutorMode = errors.New("invalid tutor mode")

	// ErrMessageLogRewritten is returned when a session update edits or drops
	// individual messages instead of appending or clearing the whole log.
	ErrMessageLogRewritten = errors.New("tutor messages can only be appended or cleared")

	// ErrInvalidEaseFactor is returned when a flashcard ease factor is below the floor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when a review interval is not positive.
	ErrInvalidInterval = errors.New("interval must be greater than 0")

	// ErrInvalidRepetitions is returned when a repetition count is negative.
	ErrInvalidRepetitions = errors.New("repetitions cannot be negative")

	// ErrInvalidCardDifficulty is returned when a difficulty estimate is outside [0,1].
	ErrInvalidCardDifficulty = errors.New("difficulty estimate must be within [0,1]")
)

// invalid wraps a specific validation error so that errors.Is matches both it
// and ErrValidation.
func invalid(err error) error {
	return &validationError{err: err}
}

type validationError struct {
	err error
}

func (e *validationError) Error() string {
	return e.err.Error()
}

func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *validationError) Unwrap() error {
	return e.err
}
