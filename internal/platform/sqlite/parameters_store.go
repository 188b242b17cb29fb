package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// parametersRowID is the fixed primary key of the single parameters record.
const parametersRowID = 1

// ParametersStore implements the store.ParametersStore interface on SQLite.
// The parameter record is stored as a JSON document in a single-row table.
type ParametersStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewParametersStore creates a new SQLite implementation of the
// ParametersStore interface. If logger is nil, the default logger is used.
func NewParametersStore(db store.DBTX, logger *slog.Logger) *ParametersStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ParametersStore{
		db:     db,
		logger: logger.With(slog.String("component", "parameters_store")),
	}
}

var _ store.ParametersStore = (*ParametersStore)(nil)

// WithTx returns a ParametersStore bound to the given transaction.
func (s *ParametersStore) WithTx(tx *sql.Tx) store.ParametersStore {
	return &ParametersStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.ParametersStore.Get.
func (s *ParametersStore) Get(ctx context.Context) (*fsrs.Parameters, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var data []byte
	err := s.db.QueryRowContext(
		ctx,
		`SELECT record FROM parameters WHERE id = ?`,
		parametersRowID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no saved parameters, caller should fall back to defaults")
			return nil, store.ErrParametersNotFound
		}
		log.Error("failed to get parameters", slog.String("error", err.Error()))
		return nil, err
	}

	params, err := fsrs.DecodeParameters(data)
	if err != nil {
		log.Error("failed to decode stored parameters", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return params, nil
}

// Save implements store.ParametersStore.Save.
func (s *ParametersStore) Save(ctx context.Context, params *fsrs.Parameters) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := params.Validate(); err != nil {
		log.Warn("parameters validation failed during save",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	query := `
		INSERT INTO parameters (id, record, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, parametersRowID, data, time.Now().UTC()); err != nil {
		log.Error("failed to save parameters", slog.String("error", err.Error()))
		return err
	}

	log.Info("parameters saved",
		slog.Float64("requested_retention", params.RequestedRetention),
		slog.Int("leech_threshold", params.LeechThreshold))
	return nil
}
