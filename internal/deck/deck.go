// Package deck holds the in-memory card collection.
package deck

import (
	"fmt"
	"sort"
	"time"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/errs"
)

// Deck is the full set of cards, keyed by id. Iteration order is
// insertion order, kept for deterministic output. Deck is not
// goroutine-safe; the engine serializes access.
type Deck struct {
	cards map[string]domain.Card
	order []string
}

// New returns an empty deck.
func New() *Deck {
	return &Deck{cards: make(map[string]domain.Card)}
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.order)
}

// Add inserts a card. The id must not already be present.
func (d *Deck) Add(card domain.Card) error {
	if _, ok := d.cards[card.ID]; ok {
		return fmt.Errorf("card %s: %w", card.ID, errs.ErrDuplicateID)
	}
	d.cards[card.ID] = card
	d.order = append(d.order, card.ID)
	return nil
}

// Get returns the card with the given id.
func (d *Deck) Get(id string) (domain.Card, error) {
	card, ok := d.cards[id]
	if !ok {
		return domain.Card{}, fmt.Errorf("card %s: %w", id, errs.ErrNotFound)
	}
	return card, nil
}

// Put replaces an existing card with an updated copy. Used by the
// engine to write back scheduler results.
func (d *Deck) Put(card domain.Card) error {
	if _, ok := d.cards[card.ID]; !ok {
		return fmt.Errorf("card %s: %w", card.ID, errs.ErrNotFound)
	}
	d.cards[card.ID] = card
	return nil
}

// All returns every card in insertion order.
func (d *Deck) All() []domain.Card {
	out := make([]domain.Card, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.cards[id])
	}
	return out
}

// Due returns the cards due at the given time, ordered by due date
// ascending with ties broken by creation date ascending, so the oldest
// waiting card always comes first.
func (d *Deck) Due(now time.Time) []domain.Card {
	var due []domain.Card
	for _, id := range d.order {
		if card := d.cards[id]; card.IsDue(now) {
			due = append(due, card)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].Due.Equal(due[j].Due) {
			return due[i].Due.Before(due[j].Due)
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	return due
}
