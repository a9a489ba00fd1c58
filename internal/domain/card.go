// Package domain defines the core entities of the scheduling engine.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finbarsheehy/memodeck/internal/errs"
)

// Scheduling defaults applied by NewCard. The engine may override the
// initial ease from its configured parameters.
const (
	DefaultInitialEase = 2.5
	DefaultCardType    = "basic"
)

// Card is the atomic review unit. Scheduling fields are only ever
// mutated by the scheduler; everything else is fixed at creation.
type Card struct {
	ID             string    `json:"id"`
	Front          string    `json:"front"`
	Back           string    `json:"back"`
	Tags           []string  `json:"tags,omitempty"`
	Type           string    `json:"type"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	Due            time.Time `json:"due"`
	CreatedAt      time.Time `json:"created_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"` // zero until first review
}

// Options carries the optional fields of NewCard.
type Options struct {
	Tags []string
	Type string
}

// NewCard constructs a card with scheduling state at its initial
// defaults. New cards are due immediately.
func NewCard(front, back string, opts Options) (Card, error) {
	if strings.TrimSpace(front) == "" {
		return Card{}, fmt.Errorf("card front is empty: %w", errs.ErrValidation)
	}
	if strings.TrimSpace(back) == "" {
		return Card{}, fmt.Errorf("card back is empty: %w", errs.ErrValidation)
	}

	cardType := opts.Type
	if cardType == "" {
		cardType = DefaultCardType
	}

	now := time.Now()
	return Card{
		ID:         uuid.NewString(),
		Front:      front,
		Back:       back,
		Tags:       append([]string(nil), opts.Tags...),
		Type:       cardType,
		EaseFactor: DefaultInitialEase,
		Due:        now,
		CreatedAt:  now,
	}, nil
}

// IsDue reports whether the card is due at the given time.
func (c Card) IsDue(now time.Time) bool {
	return !c.Due.After(now)
}

// Stage classifies the card's scheduling progress. It is a pure
// projection of the numeric state and is never stored.
func (c Card) Stage(masteryThresholdDays int) Stage {
	if c.LastReviewedAt.IsZero() {
		return StageNew
	}
	if c.Repetitions <= 2 {
		return StageLearning
	}
	if masteryThresholdDays > 0 && c.IntervalDays >= masteryThresholdDays {
		return StageMastered
	}
	return StageReview
}

// Stage is a derived classification of a card's scheduling progress.
type Stage int

const (
	StageNew Stage = iota
	StageLearning
	StageReview
	StageMastered
)

func (s Stage) String() string {
	switch s {
	case StageNew:
		return "new"
	case StageLearning:
		return "learning"
	case StageReview:
		return "review"
	case StageMastered:
		return "mastered"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}
