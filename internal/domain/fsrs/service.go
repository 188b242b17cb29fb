package fsrs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// Common service errors.
var (
	ErrNilCard     = errors.New("card state cannot be nil")
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the scheduling operations exposed to the rest of the
// application. Implementations carry the parameter vector so callers at the
// service layer do not have to thread it through every call.
type Service interface {
	// Schedule computes the new card state and the review-log entry for one
	// answered review.
	Schedule(
		card *domain.CardState,
		rating domain.Rating,
		now time.Time,
	) (*domain.CardState, *domain.ReviewLogEntry, error)

	// Postpone pushes a card's due time forward by a number of days without
	// touching its memory estimates.
	Postpone(card *domain.CardState, days int, now time.Time) (*domain.CardState, error)

	// DueCards selects the cards eligible for review at the given instant.
	DueCards(cards []domain.CardState, now time.Time, isTestDayToday bool) []uuid.UUID

	// EvaluateLeech decides whether a card has crossed the leech threshold.
	EvaluateLeech(card *domain.CardState) LeechDecision

	// Params returns the parameter vector in effect.
	Params() *Parameters
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Parameters
}

// NewDefaultService creates a scheduling service with the stock FSRS-5
// parameters.
func NewDefaultService() Service {
	return &defaultService{params: DefaultParameters()}
}

// NewServiceWithParameters creates a scheduling service with a custom
// parameter vector. The vector must already be validated.
func NewServiceWithParameters(params *Parameters) Service {
	return &defaultService{params: params}
}

func (s *defaultService) Schedule(
	card *domain.CardState,
	rating domain.Rating,
	now time.Time,
) (*domain.CardState, *domain.ReviewLogEntry, error) {
	if card == nil {
		return nil, nil, ErrNilCard
	}
	return Schedule(card, rating, now, s.params)
}

func (s *defaultService) Postpone(
	card *domain.CardState,
	days int,
	now time.Time,
) (*domain.CardState, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := card.Clone()
	next.DueAt = card.DueAt.AddDate(0, 0, days)
	next.UpdatedAt = now
	return next, nil
}

func (s *defaultService) DueCards(
	cards []domain.CardState,
	now time.Time,
	isTestDayToday bool,
) []uuid.UUID {
	return DueCards(cards, now, s.params, isTestDayToday)
}

func (s *defaultService) EvaluateLeech(card *domain.CardState) LeechDecision {
	return EvaluateLeech(card, s.params)
}

func (s *defaultService) Params() *Parameters {
	return s.params
}
