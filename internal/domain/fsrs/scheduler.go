package fsrs

import (
	"time"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

const (
	hoursPerDay = 24
	learningStep = learningStepMinutes * time.Minute
)

// Schedule processes one answered review: it maps the current card state,
// the user's rating and the review instant onto a new card state and the
// review-log entry describing the event.
//
// The input card is never modified; on error it is returned untouched as
// nil with the specific domain error. Logically invalid input (bad rating,
// time running backwards, suspended card) is reported, never clamped.
func Schedule(
	card *domain.CardState,
	rating domain.Rating,
	now time.Time,
	params *Parameters,
) (*domain.CardState, *domain.ReviewLogEntry, error) {
	if !rating.Valid() {
		return nil, nil, domain.ErrInvalidRating
	}

	if card.Suspended {
		return nil, nil, domain.ErrCardSuspended
	}

	if !card.LastReviewedAt.IsZero() && now.Before(card.LastReviewedAt) {
		return nil, nil, domain.ErrInvalidTimeOrder
	}

	elapsedDays := 0.0
	scheduledDays := 0.0
	if !card.LastReviewedAt.IsZero() {
		elapsedDays = now.Sub(card.LastReviewedAt).Hours() / hoursPerDay
		scheduledDays = card.DueAt.Sub(card.LastReviewedAt).Hours() / hoursPerDay
	}

	entry := &domain.ReviewLogEntry{
		CardID:           card.CardID,
		Rating:           rating,
		ReviewedAt:       now,
		ElapsedDays:      elapsedDays,
		ScheduledDays:    scheduledDays,
		StabilityBefore:  card.Stability,
		DifficultyBefore: card.Difficulty,
		StateBefore:      card.State,
	}

	next := card.Clone()
	next.Reps++
	if rating == domain.RatingAgain {
		next.Lapses++
	}

	w := &params.Weights

	switch card.State {
	case domain.LearningStateNew:
		next.Stability = initialStability(w, rating)
		next.Difficulty = initialDifficulty(w, rating)
		if rating == domain.RatingAgain {
			next.State = domain.LearningStateLearning
			next.DueAt = now.Add(learningStep)
		} else {
			next.State = domain.LearningStateReview
			next.DueAt = dueAfterInterval(now, next.Stability, params.RequestedRetention)
		}

	case domain.LearningStateLearning, domain.LearningStateRelearning:
		next.Difficulty = nextDifficulty(w, card.Difficulty, rating)
		if rating == domain.RatingAgain {
			// Stay on the short steps; stability is untouched until the
			// card graduates.
			next.DueAt = now.Add(learningStep)
		} else {
			next.State = domain.LearningStateReview
			next.Stability = stabilityShortTerm(w, card.Stability, rating)
			next.DueAt = dueAfterInterval(now, next.Stability, params.RequestedRetention)
		}

	case domain.LearningStateReview:
		retrievability := Retrievability(card.Stability, elapsedDays)
		next.Difficulty = nextDifficulty(w, card.Difficulty, rating)
		if rating == domain.RatingAgain {
			next.State = domain.LearningStateRelearning
			next.Stability = stabilityAfterLapse(w, card.Difficulty, card.Stability, retrievability)
			next.DueAt = now.Add(learningStep)
		} else {
			next.Stability = stabilityAfterRecall(w, card.Difficulty, card.Stability, retrievability, rating)
			next.DueAt = dueAfterInterval(now, next.Stability, params.RequestedRetention)
		}

	default:
		return nil, nil, domain.ErrInvalidLearningState
	}

	next.LastReviewedAt = now
	next.UpdatedAt = now

	if err := next.Validate(); err != nil {
		return nil, nil, err
	}

	return next, entry, nil
}

// dueAfterInterval converts the solved interval into the next due instant.
func dueAfterInterval(now time.Time, stability, requestedRetention float64) time.Time {
	days := nextInterval(stability, requestedRetention)
	return now.Add(time.Duration(days * float64(hoursPerDay) * float64(time.Hour)))
}
