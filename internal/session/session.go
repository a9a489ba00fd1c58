// Package session selects and orders due cards for a review pass.
package session

import (
	"time"

	"github.com/finbarsheehy/memodeck/internal/deck"
	"github.com/finbarsheehy/memodeck/internal/domain"
)

// Build returns the cards due at the given time, truncated to maxSize
// (maxSize <= 0 means unbounded). The result is a snapshot: mutating
// the deck afterwards does not alter an in-progress session, and a
// card may no longer be due by the time it is reached.
func Build(d *deck.Deck, now time.Time, maxSize int) []domain.Card {
	due := d.Due(now)
	if maxSize > 0 && len(due) > maxSize {
		due = due[:maxSize]
	}
	out := make([]domain.Card, len(due))
	copy(out, due)
	return out
}
