package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the generator output cannot be used
	ErrInvalidResponse = errors.New("invalid response from generator")

	// ErrTimeout is returned when generation did not finish within its deadline
	ErrTimeout = errors.New("generation timed out")

	// ErrEmptyContent is returned when there is nothing to generate from
	ErrEmptyContent = errors.New("no content to generate from")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
