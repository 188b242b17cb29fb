package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrEmptyCardID is returned when a card ID is missing.
	ErrEmptyCardID = errors.New("card ID cannot be empty")

	// ErrInvalidRating is returned when a rating is outside the 1-4 scale.
	ErrInvalidRating = errors.New("rating must be between 1 (again) and 4 (easy)")

	// ErrInvalidTimeOrder is returned when a review is submitted with a
	// timestamp earlier than the card's last review. The scheduler never
	// silently reorders time; the caller must resolve the conflict.
	ErrInvalidTimeOrder = errors.New("review time precedes the card's last review")

	// ErrCardSuspended is returned when a schedule operation is attempted
	// on a suspended card.
	ErrCardSuspended = errors.New("card is suspended")

	// ErrInvalidLearningState is returned when a learning state is not one
	// of new, learning, review or relearning.
	ErrInvalidLearningState = errors.New("invalid learning state")

	// ErrInvalidStability is returned when stability is not positive for a
	// card that has left the New state.
	ErrInvalidStability = errors.New("stability must be positive")

	// ErrInvalidDifficulty is returned when difficulty falls outside [1,10].
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")

	// ErrInvalidReviewCounts is returned when lapse or rep counters are
	// negative, or lapses exceed total reps.
	ErrInvalidReviewCounts = errors.New("invalid lapse/rep counts")

	// ErrEmptyReviewedAt is returned when a review log entry has no timestamp.
	ErrEmptyReviewedAt = errors.New("reviewed-at timestamp cannot be empty")

	// ErrNegativeElapsedDays is returned when a review log entry claims a
	// negative elapsed time since the previous review.
	ErrNegativeElapsedDays = errors.New("elapsed days cannot be negative")

	// ErrNegativeReviewTime is returned when a review log entry carries a
	// negative response time.
	ErrNegativeReviewTime = errors.New("review time cannot be negative")
)
