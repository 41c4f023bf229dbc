package srs

import (
	"time"

	"github.com/phrazzld/studyhall/internal/domain"
)

// MaxInterval caps review intervals so repeated easy reviews cannot overflow
// time.Duration.
const MaxInterval = 100 * 365 * 24 * time.Hour

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// MinEaseFactor is the floor applied after every ease factor update.
	MinEaseFactor float64

	// FirstInterval is used after the first successful review.
	FirstInterval time.Duration

	// SecondInterval is used after the second consecutive successful review.
	SecondInterval time.Duration

	// FailInterval is the interval a card falls back to after a failed review.
	FailInterval time.Duration

	// PassThreshold is the lowest quality that counts as a successful recall.
	PassThreshold int

	// MaxQuality is the top of the rating scale; ratings are clamped to [0, MaxQuality].
	MaxQuality int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor  float64
	FirstInterval  time.Duration
	SecondInterval time.Duration
	FailInterval   time.Duration
}

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		FirstInterval:  24 * time.Hour,
		SecondInterval: 6 * 24 * time.Hour,
		FailInterval:   24 * time.Hour,
		PassThreshold:  3,
		MaxQuality:     5,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero fields in config keep their default value. An ease floor below
// domain.MinEaseFactor is ignored.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor >= domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.FailInterval > 0 {
		params.FailInterval = config.FailInterval
	}

	return params
}
