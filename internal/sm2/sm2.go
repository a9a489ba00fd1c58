// Package sm2 implements the SM-2 spaced repetition algorithm as a
// pure function over card scheduling state. It has no storage or
// collection dependency; callers write the result back themselves.
package sm2

import (
	"fmt"
	"math"
	"time"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/errs"
)

// Params holds the tunable constants of the algorithm.
type Params struct {
	// InitialEase is the ease factor assigned to new cards.
	InitialEase float64
	// MinEase is the floor below which the ease factor never drops.
	MinEase float64
	// LapseEasePenalty is subtracted from the ease factor on a lapse.
	LapseEasePenalty float64
	// LapseIntervalDays is the relearning interval after a lapse.
	LapseIntervalDays int
	// FirstIntervalDays and SecondIntervalDays are the fixed intervals
	// for the first two consecutive successful reviews.
	FirstIntervalDays  int
	SecondIntervalDays int
	// MaxIntervalDays caps interval growth. Zero means uncapped.
	MaxIntervalDays int
	// MasteryThresholdDays is the interval at which a card counts as mastered.
	MasteryThresholdDays int
	// Scale is the rating scale fixed at integration time.
	Scale domain.Scale
}

// DefaultParams returns the conventional SM-2 reference values.
func DefaultParams() Params {
	return Params{
		InitialEase:          2.5,
		MinEase:              1.3,
		LapseEasePenalty:     0.2,
		LapseIntervalDays:    1,
		FirstIntervalDays:    1,
		SecondIntervalDays:   6,
		MaxIntervalDays:      365,
		MasteryThresholdDays: 21,
		Scale:                domain.FiveLevelScale(),
	}
}

// Review computes the card's next scheduling state for a rating given
// at time now. It returns the updated card and the review event to be
// appended to the log. The input card is not modified.
func (p Params) Review(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, domain.ReviewEvent, error) {
	if !p.Scale.Contains(rating) {
		return domain.Card{}, domain.ReviewEvent{},
			fmt.Errorf("rating %d outside scale %s: %w", rating, p.Scale, errs.ErrInvalidRating)
	}

	next := card
	if p.Scale.Passing(rating) {
		next.Repetitions++

		// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored at MinEase.
		q := p.Scale.Normalize(rating)
		next.EaseFactor = p.clampEase(next.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02)))

		switch next.Repetitions {
		case 1:
			next.IntervalDays = p.FirstIntervalDays
		case 2:
			next.IntervalDays = p.SecondIntervalDays
		default:
			next.IntervalDays = int(math.Round(float64(card.IntervalDays) * next.EaseFactor))
		}
		if p.MaxIntervalDays > 0 && next.IntervalDays > p.MaxIntervalDays {
			next.IntervalDays = p.MaxIntervalDays
		}
	} else {
		// Lapse: back to short-term relearning.
		next.Repetitions = 0
		next.IntervalDays = p.LapseIntervalDays
		next.EaseFactor = p.clampEase(next.EaseFactor - p.LapseEasePenalty)
	}

	next.Due = now.AddDate(0, 0, next.IntervalDays)
	next.LastReviewedAt = now

	event := domain.ReviewEvent{
		CardID:       next.ID,
		RatedAt:      now,
		Rating:       rating,
		IntervalDays: next.IntervalDays,
		Stage:        next.Stage(p.MasteryThresholdDays),
	}
	return next, event, nil
}

func (p Params) clampEase(ease float64) float64 {
	if ease < p.MinEase {
		return p.MinEase
	}
	return ease
}
