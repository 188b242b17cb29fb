package sqlite

// schema mirrors the PostgreSQL migrations in a SQLite dialect. It is
// applied on every open; CREATE TABLE IF NOT EXISTS keeps it idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS card_states (
	card_id          TEXT PRIMARY KEY,
	stability        REAL NOT NULL DEFAULT 0,
	difficulty       REAL NOT NULL DEFAULT 0,
	due_at           TIMESTAMP NOT NULL,
	last_reviewed_at TIMESTAMP,
	state            TEXT NOT NULL,
	lapses           INTEGER NOT NULL DEFAULT 0,
	reps             INTEGER NOT NULL DEFAULT 0,
	suspended        INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_card_states_due_at ON card_states (due_at);

CREATE TABLE IF NOT EXISTS review_logs (
	id                INTEGER PRIMARY KEY,
	card_id           TEXT NOT NULL REFERENCES card_states (card_id) ON DELETE CASCADE,
	rating            INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 4),
	reviewed_at       TIMESTAMP NOT NULL,
	elapsed_days      REAL NOT NULL,
	scheduled_days    REAL NOT NULL,
	review_time_ms    INTEGER NOT NULL,
	stability_before  REAL NOT NULL,
	difficulty_before REAL NOT NULL,
	state_before      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_logs_card_id ON review_logs (card_id, reviewed_at);

CREATE TABLE IF NOT EXISTS parameters (
	id         INTEGER PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`
