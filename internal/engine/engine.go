// Package engine wires the deck, scheduler, review log, and the
// persistence boundary into the inbound contract used by callers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finbarsheehy/memodeck/internal/deck"
	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/errs"
	"github.com/finbarsheehy/memodeck/internal/session"
	"github.com/finbarsheehy/memodeck/internal/sm2"
	"github.com/finbarsheehy/memodeck/internal/stats"
)

// Store is the injected load/save boundary. The engine reads the
// initial (deck, log) pair at startup and notifies the store after
// each mutating operation. Store errors are surfaced unchanged, never
// retried.
type Store interface {
	LoadCards(ctx context.Context) ([]domain.Card, error)
	LoadEvents(ctx context.Context) ([]domain.ReviewEvent, error)
	InsertCard(ctx context.Context, card domain.Card) error
	ApplyReview(ctx context.Context, card domain.Card, event domain.ReviewEvent) error
}

// ReviewNotice is the outbound event emitted after each successful
// review, so external XP/streak systems can attribute credit without
// duplicating scheduling logic.
type ReviewNotice struct {
	CardID  string
	Rating  domain.Rating
	RatedAt time.Time
	Stage   domain.Stage
}

// Observer receives review notices. Observers are called synchronously
// after the review has been applied and persisted.
type Observer func(ReviewNotice)

// Engine owns a single deck and its review log. Reviews on the same
// card are serialized per card id; reviews on different cards proceed
// without cross-card locking.
type Engine struct {
	params sm2.Params
	store  Store // nil means memory-only
	logger *zap.Logger

	mu   sync.RWMutex // guards deck and log
	deck *deck.Deck
	log  []domain.ReviewEvent

	lockMu    sync.Mutex
	cardLocks map[string]*sync.Mutex

	obsMu     sync.RWMutex
	observers []Observer
}

// New loads a prior (deck, log) pair from the store and builds the
// engine around it. A nil store, or a store with no prior state,
// bootstraps an empty deck.
func New(ctx context.Context, store Store, params sm2.Params, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		params:    params,
		store:     store,
		logger:    logger,
		deck:      deck.New(),
		cardLocks: make(map[string]*sync.Mutex),
	}

	if store != nil {
		cards, err := store.LoadCards(ctx)
		if err != nil {
			return nil, fmt.Errorf("load cards: %w", err)
		}
		for _, card := range cards {
			if err := e.deck.Add(card); err != nil {
				return nil, fmt.Errorf("load cards: %w", err)
			}
		}
		events, err := store.LoadEvents(ctx)
		if err != nil {
			return nil, fmt.Errorf("load review events: %w", err)
		}
		e.log = events
		logger.Info("deck loaded",
			zap.Int("cards", e.deck.Len()),
			zap.Int("events", len(events)),
		)
	}

	return e, nil
}

// Subscribe registers an observer for review notices.
func (e *Engine) Subscribe(obs Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, obs)
}

// CreateCard constructs a new card and adds it to the deck.
func (e *Engine) CreateCard(ctx context.Context, front, back string, opts domain.Options) (domain.Card, error) {
	card, err := domain.NewCard(front, back, opts)
	if err != nil {
		return domain.Card{}, err
	}
	if e.params.InitialEase > 0 {
		card.EaseFactor = e.params.InitialEase
	}
	if err := e.AddCard(ctx, card); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// AddCard inserts a caller-constructed card, persisting it first.
func (e *Engine) AddCard(ctx context.Context, card domain.Card) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.deck.Get(card.ID); err == nil {
		// Checked before the store insert so a duplicate never reaches disk.
		return fmt.Errorf("card %s: %w", card.ID, errs.ErrDuplicateID)
	}
	if e.store != nil {
		if err := e.store.InsertCard(ctx, card); err != nil {
			return err
		}
	}
	if err := e.deck.Add(card); err != nil {
		return err
	}
	e.logger.Debug("card added", zap.String("card_id", card.ID))
	return nil
}

// Review applies a rating to a card and returns the updated card and
// the logged event. The update is atomic: either the card state and
// the review event both land (store and memory), or neither does.
// Concurrent reviews of the same card are serialized.
func (e *Engine) Review(ctx context.Context, id string, rating domain.Rating, now time.Time) (domain.Card, domain.ReviewEvent, error) {
	// Existence check before taking the card lock, so unknown ids
	// never allocate a lock entry.
	e.mu.RLock()
	_, err := e.deck.Get(id)
	e.mu.RUnlock()
	if err != nil {
		return domain.Card{}, domain.ReviewEvent{}, err
	}

	lock := e.cardLock(id)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the card lock; a concurrent review may have
	// advanced the state since the existence check.
	e.mu.RLock()
	card, err := e.deck.Get(id)
	e.mu.RUnlock()
	if err != nil {
		return domain.Card{}, domain.ReviewEvent{}, err
	}

	next, event, err := e.params.Review(card, rating, now)
	if err != nil {
		return domain.Card{}, domain.ReviewEvent{}, err
	}

	if e.store != nil {
		if err := e.store.ApplyReview(ctx, next, event); err != nil {
			return domain.Card{}, domain.ReviewEvent{}, fmt.Errorf("persist review: %w", err)
		}
	}

	e.mu.Lock()
	if err := e.deck.Put(next); err != nil {
		e.mu.Unlock()
		return domain.Card{}, domain.ReviewEvent{}, err
	}
	e.log = append(e.log, event)
	e.mu.Unlock()

	e.logger.Info("card reviewed",
		zap.String("card_id", id),
		zap.Int("rating", int(rating)),
		zap.Int("interval_days", next.IntervalDays),
		zap.Stringer("stage", event.Stage),
	)

	e.notify(ReviewNotice{
		CardID:  id,
		Rating:  rating,
		RatedAt: now,
		Stage:   event.Stage,
	})
	return next, event, nil
}

// Card returns a single card by id.
func (e *Engine) Card(id string) (domain.Card, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.deck.Get(id)
}

// Cards returns all cards in insertion order.
func (e *Engine) Cards() []domain.Card {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.deck.All()
}

// DueCards returns the cards due at the given time.
func (e *Engine) DueCards(now time.Time) []domain.Card {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.deck.Due(now)
}

// BuildSession returns a detached review session of at most maxSize
// due cards (maxSize <= 0 means unbounded).
func (e *Engine) BuildSession(now time.Time, maxSize int) []domain.Card {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return session.Build(e.deck, now, maxSize)
}

// Stats derives the aggregate summary for the given time.
func (e *Engine) Stats(now time.Time) stats.Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return stats.Snapshot(e.deck, e.log, now, e.params.MasteryThresholdDays)
}

// Events returns a copy of the review log in append order.
func (e *Engine) Events() []domain.ReviewEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.ReviewEvent(nil), e.log...)
}

// cardLock returns the serialization mutex for a card, creating it on
// first review. Review only calls this for ids that exist in the deck,
// and the engine never deletes cards, so the map is bounded by the
// deck size.
func (e *Engine) cardLock(id string) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()
	lock, ok := e.cardLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.cardLocks[id] = lock
	}
	return lock
}

func (e *Engine) notify(notice ReviewNotice) {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, obs := range e.observers {
		obs(notice)
	}
}
