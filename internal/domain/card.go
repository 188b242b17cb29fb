package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating is the user's answer to a card review, on the standard
// four-point scale used by FSRS.
type Rating int

// Possible rating values.
const (
	RatingAgain Rating = 1 // failed to recall
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// Valid reports whether the rating is within the 1-4 scale.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating, or "unknown" for
// out-of-range values.
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// LearningState represents where a card sits in the learning state machine.
type LearningState string

// Possible learning states.
const (
	LearningStateNew        LearningState = "new"
	LearningStateLearning   LearningState = "learning"
	LearningStateReview     LearningState = "review"
	LearningStateRelearning LearningState = "relearning"
)

// Valid reports whether the state is one of the four known states.
func (s LearningState) Valid() bool {
	switch s {
	case LearningStateNew, LearningStateLearning, LearningStateReview, LearningStateRelearning:
		return true
	default:
		return false
	}
}

// CardState tracks the memory-model state of a single flashcard.
// It is mutated only by the scheduler; persistence is the caller's concern.
type CardState struct {
	CardID         uuid.UUID     `json:"card_id"`
	Stability      float64       `json:"stability"`        // estimated days until retrievability decays to ~90%
	Difficulty     float64       `json:"difficulty"`       // intrinsic recall difficulty, bounded [1,10]
	DueAt          time.Time     `json:"due_at"`           // next scheduled review instant
	LastReviewedAt time.Time     `json:"last_reviewed_at"` // zero time for never-reviewed cards
	State          LearningState `json:"state"`
	Lapses         int           `json:"lapses"` // count of Again ratings ever given
	Reps           int           `json:"reps"`   // total review count
	Suspended      bool          `json:"suspended"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewCardState creates the state for a freshly created flashcard.
// New cards are due immediately and carry no memory estimates yet.
func NewCardState(cardID uuid.UUID) (*CardState, error) {
	if cardID == uuid.Nil {
		return nil, ErrEmptyCardID
	}

	now := time.Now().UTC()
	return &CardState{
		CardID:    cardID,
		State:     LearningStateNew,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the CardState against the memory-model invariants:
// positive stability and bounded difficulty once the card has left the New
// state, and lapse count never exceeding the total review count.
func (c *CardState) Validate() error {
	if c.CardID == uuid.Nil {
		return ErrEmptyCardID
	}

	if !c.State.Valid() {
		return ErrInvalidLearningState
	}

	if c.State != LearningStateNew {
		if c.Stability <= 0 {
			return ErrInvalidStability
		}
		if c.Difficulty < 1 || c.Difficulty > 10 {
			return ErrInvalidDifficulty
		}
	}

	if c.Lapses < 0 || c.Reps < 0 || c.Lapses > c.Reps {
		return ErrInvalidReviewCounts
	}

	return nil
}

// Clone returns a copy of the card state. The scheduler follows the
// immutable-update pattern: it never modifies its input, it clones and
// returns a new state.
func (c *CardState) Clone() *CardState {
	clone := *c
	return &clone
}
