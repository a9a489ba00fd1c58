package domain

import "time"

// ReviewEvent is an append-only log entry recording a single review.
// Events are never mutated; all aggregate stats are derived from them.
// Stage is the stage the card ended up in, carried so downstream
// consumers need no scheduling knowledge.
type ReviewEvent struct {
	CardID       string    `json:"card_id"`
	RatedAt      time.Time `json:"rated_at"`
	Rating       Rating    `json:"rating"`
	IntervalDays int       `json:"interval_days"`
	Stage        Stage     `json:"stage"`
}
