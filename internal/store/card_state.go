package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// CardStateStore defines the interface for card scheduling state persistence.
type CardStateStore interface {
	// Create saves a new card state to the store.
	// Returns ErrCardStateExists if a state for the card already exists.
	// Returns ErrInvalidEntity (wrapping the validation error) if the state
	// fails domain validation.
	Create(ctx context.Context, card *domain.CardState) error

	// GetByID retrieves a card state by card ID.
	// Returns ErrCardStateNotFound if no state exists for the card.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CardState, error)

	// List returns all card states, ordered by due time. The due-set
	// selector operates on this snapshot.
	List(ctx context.Context) ([]domain.CardState, error)

	// Update replaces the stored state for a card.
	// Returns ErrCardStateNotFound if no state exists for the card.
	// Returns ErrInvalidEntity if the state fails domain validation.
	//
	// Updates that pair with a review log append MUST run within a
	// transaction; use WithTx together with store.RunInTransaction.
	Update(ctx context.Context, card *domain.CardState) error

	// Delete removes a card state by card ID. The card's review log rows
	// are removed through ON DELETE CASCADE at the schema level.
	// Returns ErrCardStateNotFound if no state exists for the card.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CardStateStore bound to the given transaction.
	// The transaction is created and managed by the caller (typically a
	// service using store.RunInTransaction).
	WithTx(tx *sql.Tx) CardStateStore
}
