package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db         *sql.DB
	cardStore  store.CardStateStore
	logStore   store.ReviewLogStore
	paramStore store.ParametersStore
	node       *snowflake.Node
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService implementation. The snowflake
// node assigns IDs to review-log entries.
func NewReviewService(
	db *sql.DB,
	cardStore store.CardStateStore,
	logStore store.ReviewLogStore,
	paramStore store.ParametersStore,
	node *snowflake.Node,
	log *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if logStore == nil {
		panic("logStore cannot be nil")
	}
	if paramStore == nil {
		panic("paramStore cannot be nil")
	}
	if node == nil {
		panic("node cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &reviewServiceImpl{
		db:         db,
		cardStore:  cardStore,
		logStore:   logStore,
		paramStore: paramStore,
		node:       node,
		logger:     log.With(slog.String("component", "review_service")),
	}
}

// CreateCard implements ReviewService.CreateCard.
func (s *reviewServiceImpl) CreateCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if cardID == uuid.Nil {
		cardID = uuid.New()
	}

	card, err := domain.NewCardState(cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to create card state: %w", err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		if errors.Is(err, store.ErrCardStateExists) {
			log.Warn("card state already exists", slog.String("card_id", cardID.String()))
			return nil, ErrCardExists
		}
		log.Error("failed to create card state",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, fmt.Errorf("failed to create card state: %w", err)
	}

	log.Debug("created card state", slog.String("card_id", cardID.String()))
	return card, nil
}

// GetCard implements ReviewService.GetCard.
func (s *reviewServiceImpl) GetCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.CardState, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardStateNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card state: %w", err)
	}
	return card, nil
}

// SubmitAnswer implements ReviewService.SubmitAnswer.
// It reschedules the card and appends the review-log entry atomically.
func (s *reviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	cardID uuid.UUID,
	answer ReviewAnswer,
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review answer",
		slog.String("card_id", cardID.String()),
		slog.Int("rating", int(answer.Rating)))

	if !answer.Rating.Valid() {
		log.Warn("invalid review rating",
			slog.String("card_id", cardID.String()),
			slog.Int("rating", int(answer.Rating)))
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, domain.ErrInvalidRating)
	}
	if answer.ReviewTimeMs < 0 {
		return nil, fmt.Errorf("%w: review time cannot be negative", ErrInvalidAnswer)
	}

	params, err := s.loadParameters(ctx)
	if err != nil {
		return nil, NewSubmitAnswerError("failed to load scheduling parameters", err)
	}
	srs := fsrs.NewServiceWithParameters(params)

	now := time.Now().UTC()

	var updated *domain.CardState
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)
		logs := s.logStore.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardStateNotFound) {
				log.Warn("card not found for review", slog.String("card_id", cardID.String()))
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card state: %w", err)
		}

		next, entry, err := srs.Schedule(card, answer.Rating, now)
		if err != nil {
			return fmt.Errorf("failed to schedule card: %w", err)
		}

		entry.ID = s.node.Generate().Int64()
		entry.ReviewTimeMs = answer.ReviewTimeMs

		if srs.EvaluateLeech(next) == fsrs.LeechSuspended {
			log.Info("suspending leech card",
				slog.String("card_id", cardID.String()),
				slog.Int("lapses", next.Lapses))
			next.Suspended = true
		}

		if err := cards.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update card state: %w", err)
		}
		if err := logs.Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append review log entry: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		// Sentinel and domain errors pass through for the API layer to map;
		// everything else gets service context.
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, domain.ErrCardSuspended) {
			return nil, err
		}
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitAnswerError("transaction failed", err)
	}

	log.Debug("review answer processed",
		slog.String("card_id", cardID.String()),
		slog.String("state", string(updated.State)),
		slog.Time("due_at", updated.DueAt))
	return updated, nil
}

// DueCards implements ReviewService.DueCards.
func (s *reviewServiceImpl) DueCards(
	ctx context.Context,
	now time.Time,
	isTestDayToday bool,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	params, err := s.loadParameters(ctx)
	if err != nil {
		return nil, NewDueCardsError("failed to load scheduling parameters", err)
	}

	cards, err := s.cardStore.List(ctx)
	if err != nil {
		log.Error("failed to list card states", slog.String("error", err.Error()))
		return nil, NewDueCardsError("failed to list card states", err)
	}

	due := fsrs.DueCards(cards, now, params, isTestDayToday)
	log.Debug("selected due cards",
		slog.Int("total", len(cards)),
		slog.Int("due", len(due)),
		slog.Bool("test_day", isTestDayToday))
	return due, nil
}

// PostponeCard implements ReviewService.PostponeCard.
func (s *reviewServiceImpl) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	params, err := s.loadParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduling parameters: %w", err)
	}
	srs := fsrs.NewServiceWithParameters(params)

	now := time.Now().UTC()

	var updated *domain.CardState
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardStateNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card state: %w", err)
		}

		next, err := srs.Postpone(card, days, now)
		if err != nil {
			return err
		}

		if err := cards.Update(ctx, next); err != nil {
			return fmt.Errorf("failed to update card state: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, fsrs.ErrInvalidDays) {
			return nil, err
		}
		log.Error("failed to postpone card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, fmt.Errorf("failed to postpone card: %w", err)
	}

	log.Debug("postponed card",
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due_at", updated.DueAt))
	return updated, nil
}

// SuspendCard implements ReviewService.SuspendCard.
func (s *reviewServiceImpl) SuspendCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.CardState, error) {
	return s.setSuspended(ctx, cardID, true)
}

// UnsuspendCard implements ReviewService.UnsuspendCard.
func (s *reviewServiceImpl) UnsuspendCard(
	ctx context.Context,
	cardID uuid.UUID,
) (*domain.CardState, error) {
	return s.setSuspended(ctx, cardID, false)
}

func (s *reviewServiceImpl) setSuspended(
	ctx context.Context,
	cardID uuid.UUID,
	suspended bool,
) (*domain.CardState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardStateNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card state: %w", err)
	}

	if card.Suspended == suspended {
		return card, nil
	}

	next := card.Clone()
	next.Suspended = suspended
	next.UpdatedAt = time.Now().UTC()

	if err := s.cardStore.Update(ctx, next); err != nil {
		if errors.Is(err, store.ErrCardStateNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to update card state: %w", err)
	}

	log.Debug("changed suspension flag",
		slog.String("card_id", cardID.String()),
		slog.Bool("suspended", suspended))
	return next, nil
}

// loadParameters returns the saved parameter vector, falling back to the
// stock FSRS-5 defaults when none has been saved yet.
func (s *reviewServiceImpl) loadParameters(ctx context.Context) (*fsrs.Parameters, error) {
	params, err := s.paramStore.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrParametersNotFound) {
			return fsrs.DefaultParameters(), nil
		}
		return nil, err
	}
	return params, nil
}
