package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLogEntry records a single answered review. Entries are immutable
// once created and the history for a card is append-only, monotonically
// increasing in ReviewedAt. The *Before fields snapshot the card state as
// it was when the answer was given, so the optimizer and statistics layers
// can reconstruct predictions after the fact.
type ReviewLogEntry struct {
	ID               int64         `json:"id"`
	CardID           uuid.UUID     `json:"card_id"`
	Rating           Rating        `json:"rating"`
	ReviewedAt       time.Time     `json:"reviewed_at"`
	ElapsedDays      float64       `json:"elapsed_days"`   // time since the previous review, in days
	ScheduledDays    float64       `json:"scheduled_days"` // the interval that had been predicted
	ReviewTimeMs     int64         `json:"review_time_ms"` // how long the user took to answer
	StabilityBefore  float64       `json:"stability_before"`
	DifficultyBefore float64       `json:"difficulty_before"`
	StateBefore      LearningState `json:"state_before"`
}

// Validate checks the review log entry against the data-model invariants.
func (e *ReviewLogEntry) Validate() error {
	if e.CardID == uuid.Nil {
		return ErrEmptyCardID
	}

	if !e.Rating.Valid() {
		return ErrInvalidRating
	}

	if e.ReviewedAt.IsZero() {
		return ErrEmptyReviewedAt
	}

	if e.ElapsedDays < 0 {
		return ErrNegativeElapsedDays
	}

	if e.ReviewTimeMs < 0 {
		return ErrNegativeReviewTime
	}

	if !e.StateBefore.Valid() {
		return ErrInvalidLearningState
	}

	return nil
}

// Succeeded reports whether the review was a successful recall
// (any rating other than Again).
func (e *ReviewLogEntry) Succeeded() bool {
	return e.Rating >= RatingHard
}
