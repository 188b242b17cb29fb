package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// ReviewAnswer represents a user's answer to a flashcard review.
type ReviewAnswer struct {
	Rating       domain.Rating `json:"rating"`         // 1=Again, 2=Hard, 3=Good, 4=Easy
	ReviewTimeMs int64         `json:"review_time_ms"` // how long the user took to answer
}

// ReviewService provides the review-loop operations: creating scheduling
// state for cards, answering reviews, selecting the due set, and the manual
// scheduling controls (postpone, suspend).
type ReviewService interface {
	// CreateCard creates fresh scheduling state for a card. The card starts
	// in the New learning state, due immediately. If cardID is the nil UUID
	// a new one is generated.
	//
	// Returns ErrCardExists if scheduling state for the card already exists.
	CreateCard(ctx context.Context, cardID uuid.UUID) (*domain.CardState, error)

	// GetCard retrieves the scheduling state for one card.
	//
	// Returns ErrCardNotFound if no state exists for the card.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.CardState, error)

	// SubmitAnswer processes an answered review and reschedules the card.
	//
	// Within a single transaction it loads the card, computes the new state
	// and the review-log entry from the current parameter vector, applies
	// the leech policy, and persists the updated state together with the
	// appended log entry. Either both writes land or neither does.
	//
	// Returns ErrCardNotFound if no state exists for the card,
	// ErrInvalidAnswer if the rating is out of range or the review time is
	// negative, and domain.ErrCardSuspended if the card is suspended.
	SubmitAnswer(ctx context.Context, cardID uuid.UUID, answer ReviewAnswer) (*domain.CardState, error)

	// DueCards returns the IDs of the cards eligible for review at the
	// given instant, ordered most overdue first. On a test day the result
	// is always empty.
	DueCards(ctx context.Context, now time.Time, isTestDayToday bool) ([]uuid.UUID, error)

	// PostponeCard pushes a card's due time forward by a number of days
	// without touching its memory estimates.
	//
	// Returns ErrCardNotFound if no state exists for the card and
	// fsrs.ErrInvalidDays if days is less than 1.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.CardState, error)

	// SuspendCard removes a card from scheduling until it is unsuspended.
	//
	// Returns ErrCardNotFound if no state exists for the card.
	SuspendCard(ctx context.Context, cardID uuid.UUID) (*domain.CardState, error)

	// UnsuspendCard returns a suspended card to normal scheduling.
	//
	// Returns ErrCardNotFound if no state exists for the card.
	UnsuspendCard(ctx context.Context, cardID uuid.UUID) (*domain.CardState, error)
}

// Common error types for ReviewService.
var (
	// ErrCardNotFound indicates that no scheduling state exists for the card.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardExists indicates that scheduling state for the card already exists.
	ErrCardExists = errors.New("card already exists")

	// ErrInvalidAnswer indicates an invalid answer was provided.
	ErrInvalidAnswer = errors.New("invalid answer")
)

// ServiceError wraps errors from the review service with additional context.
// Consumers differentiate failure modes with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_answer")
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

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answer",
		Message:   message,
		Err:       err,
	}
}

// NewDueCardsError returns a new ServiceError for the due_cards operation.
func NewDueCardsError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "due_cards",
		Message:   message,
		Err:       err,
	}
}
