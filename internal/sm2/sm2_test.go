package sm2

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/errs"
)

func newTestCard(t *testing.T) domain.Card {
	t.Helper()
	card, err := domain.NewCard("front", "back", domain.Options{})
	if err != nil {
		t.Fatalf("NewCard() returned an unexpected error: %v", err)
	}
	return card
}

func TestReviewGoodProgression(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	expectedIntervals := []int{1, 6, 15} // 1, 6, round(6 * 2.5)

	for i, want := range expectedIntervals {
		var err error
		card, _, err = params.Review(card, domain.Good, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if card.Repetitions != i+1 {
			t.Errorf("After review %d, expected repetitions %d, but got %d", i+1, i+1, card.Repetitions)
		}
		if card.IntervalDays != want {
			t.Errorf("After review %d, expected interval %d days, but got %d", i+1, want, card.IntervalDays)
		}
		if math.Abs(card.EaseFactor-2.5) > 1e-9 {
			t.Errorf("After review %d, expected ease to stay 2.5 for Good, but got %.4f", i+1, card.EaseFactor)
		}
		if !card.Due.Equal(now.AddDate(0, 0, want)) {
			t.Errorf("After review %d, expected due %v, but got %v", i+1, now.AddDate(0, 0, want), card.Due)
		}
		now = now.AddDate(0, 0, 1)
	}
}

func TestReviewEasyRaisesEase(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	now := time.Now()

	expectedEase := []float64{2.6, 2.7, 2.8}
	for i, want := range expectedEase {
		var err error
		card, _, err = params.Review(card, domain.Easy, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if math.Abs(card.EaseFactor-want) > 1e-9 {
			t.Errorf("After review %d, expected ease %.2f, but got %.4f", i+1, want, card.EaseFactor)
		}
	}
	if card.IntervalDays != 17 { // round(6 * 2.8)
		t.Errorf("Expected interval 17 after three Easy reviews, but got %d", card.IntervalDays)
	}
}

func TestReviewLapse(t *testing.T) {
	params := DefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	card := newTestCard(t)
	card.Repetitions = 3
	card.IntervalDays = 10
	card.EaseFactor = 2.3

	reviewed, event, err := params.Review(card, domain.Blackout, now)
	if err != nil {
		t.Fatalf("Review() returned an unexpected error: %v", err)
	}
	if reviewed.Repetitions != 0 {
		t.Errorf("Expected repetitions reset to 0 on lapse, but got %d", reviewed.Repetitions)
	}
	if reviewed.IntervalDays != 1 {
		t.Errorf("Expected interval reset to 1 on lapse, but got %d", reviewed.IntervalDays)
	}
	if math.Abs(reviewed.EaseFactor-2.1) > 1e-9 {
		t.Errorf("Expected ease 2.1 after penalty, but got %.4f", reviewed.EaseFactor)
	}
	// Reviewed at least once, so a lapsed card relearns; it is not new.
	if event.Stage != domain.StageLearning {
		t.Errorf("Expected a lapsed card to be in the learning stage, but got %s", event.Stage)
	}
}

func TestReviewLapseRegardlessOfPriorState(t *testing.T) {
	params := DefaultParams()
	now := time.Now()

	for _, rating := range []domain.Rating{domain.Blackout, domain.Incorrect, domain.Familiar} {
		card := newTestCard(t)
		card.Repetitions = 12
		card.IntervalDays = 200
		card.EaseFactor = 2.8

		reviewed, _, err := params.Review(card, rating, now)
		if err != nil {
			t.Fatalf("Review(%d) returned an unexpected error: %v", rating, err)
		}
		if reviewed.Repetitions != 0 || reviewed.IntervalDays != 1 {
			t.Errorf("Rating %d: expected reset to repetitions=0 interval=1, but got %d/%d",
				rating, reviewed.Repetitions, reviewed.IntervalDays)
		}
	}
}

func TestEaseFloorHolds(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	now := time.Now()

	// Alternate lapses and hard passes; ease must never dip below 1.3.
	ratings := []domain.Rating{
		domain.Blackout, domain.Blackout, domain.Blackout,
		domain.Hard, domain.Blackout, domain.Hard, domain.Hard,
		domain.Blackout, domain.Blackout, domain.Blackout,
	}
	for _, rating := range ratings {
		var err error
		card, _, err = params.Review(card, rating, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if card.EaseFactor < params.MinEase {
			t.Fatalf("Ease factor %.4f dropped below the %.1f floor", card.EaseFactor, params.MinEase)
		}
	}
}

func TestRepetitionsNeverDecreaseOnPass(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	now := time.Now()

	for i := 1; i <= 10; i++ {
		var err error
		card, _, err = params.Review(card, domain.Hard, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if card.Repetitions != i {
			t.Fatalf("Expected repetitions %d after %d passing reviews, but got %d", i, i, card.Repetitions)
		}
	}
}

func TestMaxIntervalCap(t *testing.T) {
	params := DefaultParams()
	params.MaxIntervalDays = 30
	now := time.Now()

	card := newTestCard(t)
	card.Repetitions = 5
	card.IntervalDays = 25
	card.EaseFactor = 2.5

	reviewed, _, err := params.Review(card, domain.Easy, now)
	if err != nil {
		t.Fatalf("Review() returned an unexpected error: %v", err)
	}
	if reviewed.IntervalDays != 30 {
		t.Errorf("Expected interval capped at 30, but got %d", reviewed.IntervalDays)
	}
}

func TestInvalidRating(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	now := time.Now()

	for _, rating := range []domain.Rating{-1, 6, 42} {
		_, _, err := params.Review(card, rating, now)
		if !errors.Is(err, errs.ErrInvalidRating) {
			t.Errorf("Review(%d): expected ErrInvalidRating, but got %v", rating, err)
		}
	}
}

func TestFourLevelScale(t *testing.T) {
	params := DefaultParams()
	params.Scale = domain.FourLevelScale()
	now := time.Now()

	t.Run("Again is a lapse", func(t *testing.T) {
		card := newTestCard(t)
		card.Repetitions = 3
		card.IntervalDays = 10

		reviewed, _, err := params.Review(card, 1, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if reviewed.Repetitions != 0 || reviewed.IntervalDays != 1 {
			t.Errorf("Expected Again to lapse, but got repetitions=%d interval=%d",
				reviewed.Repetitions, reviewed.IntervalDays)
		}
	})

	t.Run("Hard passes", func(t *testing.T) {
		card := newTestCard(t)
		reviewed, _, err := params.Review(card, 2, now)
		if err != nil {
			t.Fatalf("Review() returned an unexpected error: %v", err)
		}
		if reviewed.Repetitions != 1 {
			t.Errorf("Expected Hard to pass, but got repetitions=%d", reviewed.Repetitions)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		card := newTestCard(t)
		if _, _, err := params.Review(card, 0, now); !errors.Is(err, errs.ErrInvalidRating) {
			t.Errorf("Expected ErrInvalidRating for rating 0 on the 1-4 scale, but got %v", err)
		}
		if _, _, err := params.Review(card, 5, now); !errors.Is(err, errs.ErrInvalidRating) {
			t.Errorf("Expected ErrInvalidRating for rating 5 on the 1-4 scale, but got %v", err)
		}
	})
}

func TestReviewDoesNotMutateInput(t *testing.T) {
	params := DefaultParams()
	card := newTestCard(t)
	before := card

	if _, _, err := params.Review(card, domain.Good, time.Now()); err != nil {
		t.Fatalf("Review() returned an unexpected error: %v", err)
	}
	if card.Repetitions != before.Repetitions || card.IntervalDays != before.IntervalDays ||
		card.EaseFactor != before.EaseFactor || !card.Due.Equal(before.Due) {
		t.Error("Expected the input card to be unchanged after Review()")
	}
}
