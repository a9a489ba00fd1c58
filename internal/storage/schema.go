package storage

const schema = `
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'basic',
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    due DATETIME NOT NULL,
    created_at DATETIME NOT NULL,
    last_reviewed_at DATETIME
);

-- Append-only; rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS review_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    rated_at DATETIME NOT NULL,
    rating INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    stage INTEGER NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);
`
