package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// CardStateStore implements the store.CardStateStore interface on SQLite.
type CardStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStateStore creates a new SQLite implementation of the
// CardStateStore interface. If logger is nil, the default logger is used.
func NewCardStateStore(db store.DBTX, logger *slog.Logger) *CardStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_state_store")),
	}
}

var _ store.CardStateStore = (*CardStateStore)(nil)

// WithTx returns a CardStateStore bound to the given transaction.
func (s *CardStateStore) WithTx(tx *sql.Tx) store.CardStateStore {
	return &CardStateStore{
		db:     tx,
		logger: s.logger,
	}
}

// isUniqueViolation detects SQLite unique/primary key constraint failures.
// The pure-Go driver exposes them only through the error message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create implements store.CardStateStore.Create.
func (s *CardStateStore) Create(ctx context.Context, card *domain.CardState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO card_states (
			card_id, stability, difficulty, due_at, last_reviewed_at,
			state, lapses, reps, suspended, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.CardID,
		card.Stability,
		card.Difficulty,
		card.DueAt,
		nullableTime(card.LastReviewedAt),
		string(card.State),
		card.Lapses,
		card.Reps,
		card.Suspended,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("card state already exists",
				slog.String("card_id", card.CardID.String()))
			return fmt.Errorf("%w: %v", store.ErrCardStateExists, err)
		}
		log.Error("failed to create card state",
			slog.String("error", err.Error()),
			slog.String("card_id", card.CardID.String()))
		return err
	}

	log.Debug("card state created",
		slog.String("card_id", card.CardID.String()),
		slog.String("state", string(card.State)))
	return nil
}

// GetByID implements store.CardStateStore.GetByID.
func (s *CardStateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT card_id, stability, difficulty, due_at, last_reviewed_at,
		       state, lapses, reps, suspended, created_at, updated_at
		FROM card_states
		WHERE card_id = ?
	`

	card, err := scanCardState(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card state not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardStateNotFound
		}
		log.Error("failed to get card state",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// List implements store.CardStateStore.List.
func (s *CardStateStore) List(ctx context.Context) ([]domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT card_id, stability, difficulty, due_at, last_reviewed_at,
		       state, lapses, reps, suspended, created_at, updated_at
		FROM card_states
		ORDER BY due_at, card_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list card states", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.CardState, 0)
	for rows.Next() {
		card, err := scanCardState(rows)
		if err != nil {
			log.Error("failed to scan card state row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// Update implements store.CardStateStore.Update.
func (s *CardStateStore) Update(ctx context.Context, card *domain.CardState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE card_states
		SET stability = ?, difficulty = ?, due_at = ?, last_reviewed_at = ?,
		    state = ?, lapses = ?, reps = ?, suspended = ?, updated_at = ?
		WHERE card_id = ?
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Stability,
		card.Difficulty,
		card.DueAt,
		nullableTime(card.LastReviewedAt),
		string(card.State),
		card.Lapses,
		card.Reps,
		card.Suspended,
		card.UpdatedAt,
		card.CardID,
	)
	if err != nil {
		log.Error("failed to update card state",
			slog.String("error", err.Error()),
			slog.String("card_id", card.CardID.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		log.Debug("card state not found for update",
			slog.String("card_id", card.CardID.String()))
		return store.ErrCardStateNotFound
	}

	log.Debug("card state updated",
		slog.String("card_id", card.CardID.String()),
		slog.String("state", string(card.State)))
	return nil
}

// Delete implements store.CardStateStore.Delete.
// Review log rows for the card are removed by ON DELETE CASCADE.
func (s *CardStateStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM card_states WHERE card_id = ?`, id)
	if err != nil {
		log.Error("failed to delete card state",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrCardStateNotFound
	}

	log.Debug("card state deleted", slog.String("card_id", id.String()))
	return nil
}
