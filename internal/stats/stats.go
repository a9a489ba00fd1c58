// Package stats derives aggregate review metrics from the deck and the
// append-only review log. All derivations are pure and idempotent;
// there are no running counters to drift.
package stats

import (
	"sort"
	"time"

	"github.com/finbarsheehy/memodeck/internal/deck"
	"github.com/finbarsheehy/memodeck/internal/domain"
)

// Progress counts cards per derived stage. The four counts partition
// the deck and always sum to its size.
type Progress struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
}

// Summary is a point-in-time view of the deck and review history.
type Summary struct {
	TotalCards    int      `json:"total_cards"`
	DueCount      int      `json:"due_count"`
	ReviewedToday int      `json:"reviewed_today"`
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	Progress      Progress `json:"progress"`
}

// Snapshot computes a Summary for the given time. An empty deck and
// log yield all-zero stats. Day boundaries use the location of now.
func Snapshot(d *deck.Deck, log []domain.ReviewEvent, now time.Time, masteryThresholdDays int) Summary {
	s := Summary{
		TotalCards: d.Len(),
		DueCount:   len(d.Due(now)),
	}

	for _, card := range d.All() {
		switch card.Stage(masteryThresholdDays) {
		case domain.StageNew:
			s.Progress.New++
		case domain.StageLearning:
			s.Progress.Learning++
		case domain.StageReview:
			s.Progress.Review++
		case domain.StageMastered:
			s.Progress.Mastered++
		}
	}

	today := startOfDay(now)
	days := make(map[int64]bool)
	for _, ev := range log {
		ratedAt := ev.RatedAt.In(now.Location())
		if !ratedAt.Before(today) && ratedAt.Before(now) {
			s.ReviewedToday++
		}
		days[startOfDay(ratedAt).Unix()] = true
	}

	s.CurrentStreak = currentStreak(days, today)
	s.LongestStreak = longestStreak(days, now.Location())
	return s
}

// currentStreak walks backward one calendar day at a time. A day in
// progress with no reviews yet does not break yesterday's streak, but
// any fully elapsed empty day does.
func currentStreak(days map[int64]bool, today time.Time) int {
	day := today
	if !days[day.Unix()] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day.Unix()] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak finds the longest run of consecutive review days over
// the entire log.
func longestStreak(days map[int64]bool, loc *time.Location) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]int64, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		prev := time.Unix(sorted[i-1], 0).In(loc)
		if prev.AddDate(0, 0, 1).Unix() == sorted[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
