package srs

import "errors"

// Outcome is a coarse, four-button review rating offered by the API and CLI
// as an alternative to a raw 0-5 quality.
type Outcome string

// Possible review outcome values
const (
	OutcomeAgain Outcome = "again"
	OutcomeHard  Outcome = "hard"
	OutcomeGood  Outcome = "good"
	OutcomeEasy  Outcome = "easy"
)

// ErrInvalidOutcome is returned for an unknown outcome name.
var ErrInvalidOutcome = errors.New("invalid review outcome")

// Quality maps an outcome onto the 0-5 SM-2 scale.
func (o Outcome) Quality() (int, error) {
	switch o {
	case OutcomeAgain:
		return 1, nil
	case OutcomeHard:
		return 3, nil
	case OutcomeGood:
		return 4, nil
	case OutcomeEasy:
		return 5, nil
	default:
		return 0, ErrInvalidOutcome
	}
}
