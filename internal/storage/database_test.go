package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finbarsheehy/memodeck/internal/deck"
	"github.com/finbarsheehy/memodeck/internal/domain"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memodeck.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func sampleCard(id string, due time.Time) domain.Card {
	return domain.Card{
		ID:         id,
		Front:      "front " + id,
		Back:       "back " + id,
		Tags:       []string{"go", "testing"},
		Type:       domain.DefaultCardType,
		EaseFactor: 2.5,
		Due:        due,
		CreatedAt:  due.Add(-time.Minute),
	}
}

func TestInsertAndLoadCards(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first := sampleCard("card-1", now)
	second := sampleCard("card-2", now.AddDate(0, 0, 3))
	require.NoError(t, store.InsertCard(ctx, first))
	require.NoError(t, store.InsertCard(ctx, second))

	cards, err := store.LoadCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	// Insertion order is preserved.
	require.Equal(t, "card-1", cards[0].ID)
	require.Equal(t, "card-2", cards[1].ID)

	require.Equal(t, first.Front, cards[0].Front)
	require.Equal(t, first.Back, cards[0].Back)
	require.Equal(t, first.Tags, cards[0].Tags)
	require.Equal(t, first.EaseFactor, cards[0].EaseFactor)
	require.WithinDuration(t, first.Due, cards[0].Due, time.Second)
	require.True(t, cards[0].LastReviewedAt.IsZero(), "unreviewed card should round-trip with zero LastReviewedAt")
}

func TestApplyReviewIsAtomic(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	card := sampleCard("card-1", now)
	require.NoError(t, store.InsertCard(ctx, card))

	card.Repetitions = 1
	card.IntervalDays = 1
	card.LastReviewedAt = now
	card.Due = now.AddDate(0, 0, 1)
	event := domain.ReviewEvent{
		CardID:       card.ID,
		RatedAt:      now,
		Rating:       domain.Good,
		IntervalDays: 1,
		Stage:        domain.StageLearning,
	}
	require.NoError(t, store.ApplyReview(ctx, card, event))

	events, err := store.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, card.ID, events[0].CardID)
	require.Equal(t, domain.Good, events[0].Rating)
	require.Equal(t, domain.StageLearning, events[0].Stage)

	cards, err := store.LoadCards(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cards[0].Repetitions)
	require.WithinDuration(t, now, cards[0].LastReviewedAt, time.Second)
}

func TestApplyReviewUnknownCard(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	card := sampleCard("ghost", now)
	err := store.ApplyReview(ctx, card, domain.ReviewEvent{CardID: "ghost", RatedAt: now})
	require.Error(t, err)

	// The event append must have rolled back with the card update.
	events, loadErr := store.LoadEvents(ctx)
	require.NoError(t, loadErr)
	require.Empty(t, events)
}

func TestRoundTripReproducesDueCards(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	overdue := sampleCard("overdue", now.AddDate(0, 0, -2))
	dueNow := sampleCard("due-now", now)
	future := sampleCard("future", now.AddDate(0, 0, 5))
	for _, card := range []domain.Card{overdue, dueNow, future} {
		require.NoError(t, store.InsertCard(ctx, card))
	}

	buildDeck := func(cards []domain.Card) *deck.Deck {
		d := deck.New()
		for _, card := range cards {
			require.NoError(t, d.Add(card))
		}
		return d
	}

	before, err := store.LoadCards(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	after, err := reopened.LoadCards(ctx)
	require.NoError(t, err)

	dueBefore := buildDeck(before).Due(now)
	dueAfter := buildDeck(after).Due(now)
	require.Equal(t, len(dueBefore), len(dueAfter))
	for i := range dueBefore {
		require.Equal(t, dueBefore[i].ID, dueAfter[i].ID)
	}
	require.Equal(t, []string{"overdue", "due-now"}, []string{dueAfter[0].ID, dueAfter[1].ID})
}

func TestEmptyDatabaseBootstraps(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	cards, err := store.LoadCards(ctx)
	require.NoError(t, err)
	require.Empty(t, cards)

	events, err := store.LoadEvents(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}
