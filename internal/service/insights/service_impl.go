package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// Verify interface compliance at compile time
var _ InsightsService = (*insightsServiceImpl)(nil)

// insightsServiceImpl implements the InsightsService interface.
type insightsServiceImpl struct {
	logStore   store.ReviewLogStore
	paramStore store.ParametersStore
	logger     *slog.Logger
}

// NewInsightsService creates a new InsightsService implementation.
func NewInsightsService(
	logStore store.ReviewLogStore,
	paramStore store.ParametersStore,
	log *slog.Logger,
) InsightsService {
	if logStore == nil {
		panic("logStore cannot be nil")
	}
	if paramStore == nil {
		panic("paramStore cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &insightsServiceImpl{
		logStore:   logStore,
		paramStore: paramStore,
		logger:     log.With(slog.String("component", "insights_service")),
	}
}

// Stats implements InsightsService.Stats.
func (s *insightsServiceImpl) Stats(ctx context.Context) (*fsrs.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	history, err := s.logStore.ListAll(ctx)
	if err != nil {
		log.Error("failed to list review history", slog.String("error", err.Error()))
		return nil, NewStatsError("failed to list review history", err)
	}

	return fsrs.CalculateReviewStats(history), nil
}

// CardStats implements InsightsService.CardStats.
func (s *insightsServiceImpl) CardStats(
	ctx context.Context,
	cardID uuid.UUID,
) (*fsrs.ReviewStats, error) {
	history, err := s.logStore.ListByCard(ctx, cardID)
	if err != nil {
		return nil, NewStatsError("failed to list card history", err)
	}
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	return fsrs.CalculateReviewStats(history), nil
}

// Parameters implements InsightsService.Parameters.
func (s *insightsServiceImpl) Parameters(ctx context.Context) (*fsrs.Parameters, error) {
	params, err := s.paramStore.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrParametersNotFound) {
			return fsrs.DefaultParameters(), nil
		}
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	return params, nil
}

// UpdateParameters implements InsightsService.UpdateParameters.
func (s *insightsServiceImpl) UpdateParameters(
	ctx context.Context,
	params *fsrs.Parameters,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params == nil {
		return fmt.Errorf("%w: parameters cannot be nil", store.ErrInvalidEntity)
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.paramStore.Save(ctx, params); err != nil {
		log.Error("failed to save parameters", slog.String("error", err.Error()))
		return fmt.Errorf("failed to save parameters: %w", err)
	}

	log.Info("replaced scheduling parameters",
		slog.Float64("requested_retention", params.RequestedRetention))
	return nil
}

// OptimizeParameters implements InsightsService.OptimizeParameters.
// It persists the fitted vector only when the optimizer actually ran; a
// gated run leaves the saved record untouched.
func (s *insightsServiceImpl) OptimizeParameters(
	ctx context.Context,
) (*fsrs.OptimizationResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	history, err := s.logStore.ListAll(ctx)
	if err != nil {
		return nil, NewOptimizeError("failed to list review history", err)
	}

	current, err := s.Parameters(ctx)
	if err != nil {
		return nil, NewOptimizeError("failed to load current parameters", err)
	}

	result, err := fsrs.OptimizeParameters(history, current)
	if err != nil {
		return nil, NewOptimizeError("parameter fit failed", err)
	}

	if !result.Optimized {
		log.Info("optimization gated on history size",
			slog.Int("review_count", result.ReviewCount),
			slog.String("message", result.Message))
		return result, nil
	}

	if err := s.paramStore.Save(ctx, result.Parameters); err != nil {
		return nil, NewOptimizeError("failed to save fitted parameters", err)
	}

	log.Info("fitted and saved scheduling parameters",
		slog.Int("review_count", result.ReviewCount),
		slog.Float64("log_loss", result.LogLoss),
		slog.String("message", result.Message))
	return result, nil
}

// OptimalRetention implements InsightsService.OptimalRetention.
func (s *insightsServiceImpl) OptimalRetention(ctx context.Context) (*RetentionAdvice, error) {
	history, err := s.logStore.ListAll(ctx)
	if err != nil {
		return nil, NewStatsError("failed to list review history", err)
	}

	optimal := fsrs.CalculateOptimalRetention(
		history,
		fsrs.DefaultAvgReviewTimeSeconds,
		fsrs.DefaultAvgRelearnTimeSeconds,
	)

	return &RetentionAdvice{
		OptimalRetention: optimal,
		HistorySize:      len(history),
		Efficiency:       fsrs.RecommendedRetention(fsrs.RetentionGoalEfficiency),
		Balanced:         fsrs.RecommendedRetention(fsrs.RetentionGoalBalanced),
		Mastery:          fsrs.RecommendedRetention(fsrs.RetentionGoalMastery),
	}, nil
}
