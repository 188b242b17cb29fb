package postgres

import (
	"database/sql"
	"time"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullableTime converts a zero time to NULL. Never-reviewed cards carry a
// zero LastReviewedAt in the domain and a NULL in the database.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func scanCardState(row rowScanner) (*domain.CardState, error) {
	var card domain.CardState
	var lastReviewedAt sql.NullTime
	var state string

	err := row.Scan(
		&card.CardID,
		&card.Stability,
		&card.Difficulty,
		&card.DueAt,
		&lastReviewedAt,
		&state,
		&card.Lapses,
		&card.Reps,
		&card.Suspended,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.State = domain.LearningState(state)
	if lastReviewedAt.Valid {
		card.LastReviewedAt = lastReviewedAt.Time
	}

	return &card, nil
}

func scanReviewLogEntry(row rowScanner) (*domain.ReviewLogEntry, error) {
	var entry domain.ReviewLogEntry
	var rating int
	var stateBefore string

	err := row.Scan(
		&entry.ID,
		&entry.CardID,
		&rating,
		&entry.ReviewedAt,
		&entry.ElapsedDays,
		&entry.ScheduledDays,
		&entry.ReviewTimeMs,
		&entry.StabilityBefore,
		&entry.DifficultyBefore,
		&stateBefore,
	)
	if err != nil {
		return nil, err
	}

	entry.Rating = domain.Rating(rating)
	entry.StateBefore = domain.LearningState(stateBefore)

	return &entry, nil
}
