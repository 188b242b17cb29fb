package store

import (
	"context"
	"database/sql"

	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
)

// ParametersStore defines the interface for persisting the algorithm
// parameter record. There is a single active record; Save replaces it.
type ParametersStore interface {
	// Get retrieves the saved parameters.
	// Returns ErrParametersNotFound if no record has been saved yet;
	// callers fall back to fsrs.DefaultParameters.
	Get(ctx context.Context) (*fsrs.Parameters, error)

	// Save stores the parameters, replacing any previous record.
	// Returns ErrInvalidEntity if the parameters fail validation.
	Save(ctx context.Context, params *fsrs.Parameters) error

	// WithTx returns a ParametersStore bound to the given transaction.
	WithTx(tx *sql.Tx) ParametersStore
}
