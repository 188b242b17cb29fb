package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review history.
// Entries are never updated or deleted individually; the log only grows, and
// per-card history is monotone in ReviewedAt.
type ReviewLogStore interface {
	// Append adds one review log entry. The entry's ID must already be
	// assigned by the caller.
	// Returns ErrInvalidEntity if the entry fails domain validation.
	//
	// Appends that pair with a card state update MUST run within a
	// transaction; use WithTx together with store.RunInTransaction.
	Append(ctx context.Context, entry *domain.ReviewLogEntry) error

	// ListByCard returns the full history for one card in chronological
	// order (ReviewedAt ascending, ID as tie-break).
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.ReviewLogEntry, error)

	// ListAll returns the complete review history in chronological order.
	// The optimizer and statistics layers consume this.
	ListAll(ctx context.Context) ([]domain.ReviewLogEntry, error)

	// Count returns the total number of logged reviews.
	Count(ctx context.Context) (int, error)

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
