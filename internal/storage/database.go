// Package storage persists the deck and review log in SQLite. It is
// the injected load/save boundary of the engine; a missing database
// file simply bootstraps empty.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/finbarsheehy/memodeck/internal/domain"
)

// Store wraps the SQL database connection.
type Store struct {
	db *sqlx.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type cardRow struct {
	ID             string       `db:"id"`
	Front          string       `db:"front"`
	Back           string       `db:"back"`
	Tags           string       `db:"tags"`
	Type           string       `db:"type"`
	EaseFactor     float64      `db:"ease_factor"`
	IntervalDays   int          `db:"interval_days"`
	Repetitions    int          `db:"repetitions"`
	Due            time.Time    `db:"due"`
	CreatedAt      time.Time    `db:"created_at"`
	LastReviewedAt sql.NullTime `db:"last_reviewed_at"`
}

func (r cardRow) toDomain() domain.Card {
	card := domain.Card{
		ID:           r.ID,
		Front:        r.Front,
		Back:         r.Back,
		Type:         r.Type,
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
		Due:          r.Due,
		CreatedAt:    r.CreatedAt,
	}
	if r.Tags != "" {
		card.Tags = strings.Split(r.Tags, ",")
	}
	if r.LastReviewedAt.Valid {
		card.LastReviewedAt = r.LastReviewedAt.Time
	}
	return card
}

func toRow(card domain.Card) cardRow {
	row := cardRow{
		ID:           card.ID,
		Front:        card.Front,
		Back:         card.Back,
		Tags:         strings.Join(card.Tags, ","),
		Type:         card.Type,
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
		Due:          card.Due,
		CreatedAt:    card.CreatedAt,
	}
	if !card.LastReviewedAt.IsZero() {
		row.LastReviewedAt = sql.NullTime{Time: card.LastReviewedAt, Valid: true}
	}
	return row
}

// LoadCards returns every stored card in insertion order.
func (s *Store) LoadCards(ctx context.Context) ([]domain.Card, error) {
	var rows []cardRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, front, back, tags, type, ease_factor, interval_days,
		       repetitions, due, created_at, last_reviewed_at
		FROM cards ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	cards := make([]domain.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toDomain())
	}
	return cards, nil
}

// LoadEvents returns the full review log in append order.
func (s *Store) LoadEvents(ctx context.Context) ([]domain.ReviewEvent, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT card_id, rated_at, rating, interval_days, stage
		FROM review_events ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load review events: %w", err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		if err := rows.Scan(&ev.CardID, &ev.RatedAt, &ev.Rating, &ev.IntervalDays, &ev.Stage); err != nil {
			return nil, fmt.Errorf("failed to scan review event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// InsertCard inserts a new card.
func (s *Store) InsertCard(ctx context.Context, card domain.Card) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO cards (id, front, back, tags, type, ease_factor, interval_days,
		                   repetitions, due, created_at, last_reviewed_at)
		VALUES (:id, :front, :back, :tags, :type, :ease_factor, :interval_days,
		        :repetitions, :due, :created_at, :last_reviewed_at)
	`, toRow(card))
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// ApplyReview writes the reviewed card state and appends the review
// event in a single transaction, so a failed append rolls back the
// card update and stats stay consistent with state.
func (s *Store) ApplyReview(ctx context.Context, card domain.Card, event domain.ReviewEvent) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `
		UPDATE cards
		SET ease_factor = :ease_factor, interval_days = :interval_days,
		    repetitions = :repetitions, due = :due, last_reviewed_at = :last_reviewed_at
		WHERE id = :id
	`, toRow(card))
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", card.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update card %s: no such row", card.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_events (card_id, rated_at, rating, interval_days, stage)
		VALUES (?, ?, ?, ?, ?)
	`, event.CardID, event.RatedAt, event.Rating, event.IntervalDays, event.Stage)
	if err != nil {
		return fmt.Errorf("failed to append review event for %s: %w", card.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review for %s: %w", card.ID, err)
	}
	return nil
}
