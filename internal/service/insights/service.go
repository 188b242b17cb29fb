package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
)

// RetentionAdvice is the retention advisor's output: the target computed
// from the user's own history alongside the fixed goal presets.
type RetentionAdvice struct {
	OptimalRetention float64 `json:"optimal_retention"`
	HistorySize      int     `json:"history_size"`

	// Goal presets, for clients that let the user pick instead of trusting
	// the computed target.
	Efficiency float64 `json:"efficiency"`
	Balanced   float64 `json:"balanced"`
	Mastery    float64 `json:"mastery"`
}

// InsightsService provides the read-and-tune side of the system: review
// statistics, parameter optimization, and retention advice.
type InsightsService interface {
	// Stats aggregates the full review history into review statistics.
	// An empty history yields zero-valued stats, not an error.
	Stats(ctx context.Context) (*fsrs.ReviewStats, error)

	// CardStats aggregates the review history of a single card.
	//
	// Returns ErrNoHistory if the card has no recorded reviews.
	CardStats(ctx context.Context, cardID uuid.UUID) (*fsrs.ReviewStats, error)

	// Parameters returns the parameter vector in effect: the saved record,
	// or the stock FSRS-5 defaults when none has been saved.
	Parameters(ctx context.Context) (*fsrs.Parameters, error)

	// UpdateParameters validates and saves a caller-supplied parameter
	// vector, replacing the previous record.
	UpdateParameters(ctx context.Context, params *fsrs.Parameters) error

	// OptimizeParameters fits the parameter weights against the recorded
	// history and persists the fitted vector when the run actually
	// optimized. A history below the optimizer's gate is a reported
	// outcome (Optimized=false with an explanatory message), not an error.
	OptimizeParameters(ctx context.Context) (*fsrs.OptimizationResult, error)

	// OptimalRetention computes the retention target that minimizes total
	// study time for this user's history, using the stock time-cost
	// assumptions.
	OptimalRetention(ctx context.Context) (*RetentionAdvice, error)
}

// ErrNoHistory indicates that no review history exists for the requested card.
var ErrNoHistory = errors.New("no review history")

// ServiceError wraps errors from the insights service with additional context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "optimize_parameters")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewOptimizeError returns a new ServiceError for the optimize_parameters operation.
func NewOptimizeError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "optimize_parameters",
		Message:   message,
		Err:       err,
	}
}

// NewStatsError returns a new ServiceError for the stats operation.
func NewStatsError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "stats",
		Message:   message,
		Err:       err,
	}
}
