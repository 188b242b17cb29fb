package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// ReviewLogStore implements the store.ReviewLogStore interface using a
// PostgreSQL database as the storage backend.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. If logger is nil, the default logger is used.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// WithTx returns a ReviewLogStore bound to the given transaction.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.ReviewLogStore.Append.
func (s *ReviewLogStore) Append(ctx context.Context, entry *domain.ReviewLogEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("review log entry validation failed",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_logs (
			id, card_id, rating, reviewed_at, elapsed_days, scheduled_days,
			review_time_ms, stability_before, difficulty_before, state_before
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.CardID,
		int(entry.Rating),
		entry.ReviewedAt,
		entry.ElapsedDays,
		entry.ScheduledDays,
		entry.ReviewTimeMs,
		entry.StabilityBefore,
		entry.DifficultyBefore,
		string(entry.StateBefore),
	)
	if err != nil {
		log.Error("failed to append review log entry",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID.String()))
		return MapError(err)
	}

	log.Debug("review log entry appended",
		slog.Int64("entry_id", entry.ID),
		slog.String("card_id", entry.CardID.String()),
		slog.String("rating", entry.Rating.String()))
	return nil
}

// ListByCard implements store.ReviewLogStore.ListByCard.
func (s *ReviewLogStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
) ([]domain.ReviewLogEntry, error) {
	query := `
		SELECT id, card_id, rating, reviewed_at, elapsed_days, scheduled_days,
		       review_time_ms, stability_before, difficulty_before, state_before
		FROM review_logs
		WHERE card_id = $1
		ORDER BY reviewed_at, id
	`
	return s.queryEntries(ctx, query, cardID)
}

// ListAll implements store.ReviewLogStore.ListAll.
func (s *ReviewLogStore) ListAll(ctx context.Context) ([]domain.ReviewLogEntry, error) {
	query := `
		SELECT id, card_id, rating, reviewed_at, elapsed_days, scheduled_days,
		       review_time_ms, stability_before, difficulty_before, state_before
		FROM review_logs
		ORDER BY reviewed_at, id
	`
	return s.queryEntries(ctx, query)
}

// Count implements store.ReviewLogStore.Count.
func (s *ReviewLogStore) Count(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_logs`).Scan(&count)
	if err != nil {
		log.Error("failed to count review log entries", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	return count, nil
}

func (s *ReviewLogStore) queryEntries(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.ReviewLogEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review log entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]domain.ReviewLogEntry, 0)
	for rows.Next() {
		entry, err := scanReviewLogEntry(rows)
		if err != nil {
			log.Error("failed to scan review log row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}
