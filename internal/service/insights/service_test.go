package insights_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// fakeLogStore is an in-memory ReviewLogStore for service tests.
type fakeLogStore struct {
	entries []domain.ReviewLogEntry
	listErr error
}

func (f *fakeLogStore) Append(_ context.Context, entry *domain.ReviewLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogStore) ListByCard(_ context.Context, cardID uuid.UUID) ([]domain.ReviewLogEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ReviewLogEntry
	for _, e := range f.entries {
		if e.CardID == cardID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLogStore) ListAll(_ context.Context) ([]domain.ReviewLogEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.ReviewLogEntry(nil), f.entries...), nil
}

func (f *fakeLogStore) Count(_ context.Context) (int, error) {
	return len(f.entries), nil
}

func (f *fakeLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore { return f }

// fakeParamStore is an in-memory ParametersStore for service tests.
type fakeParamStore struct {
	params    *fsrs.Parameters
	saveCalls int
}

func (f *fakeParamStore) Get(_ context.Context) (*fsrs.Parameters, error) {
	if f.params == nil {
		return nil, store.ErrParametersNotFound
	}
	return f.params.Clone(), nil
}

func (f *fakeParamStore) Save(_ context.Context, params *fsrs.Parameters) error {
	f.saveCalls++
	f.params = params.Clone()
	return nil
}

func (f *fakeParamStore) WithTx(_ *sql.Tx) store.ParametersStore { return f }

// syntheticHistory builds n review entries spread over a handful of cards,
// each carrying a plausible pre-review snapshot.
func syntheticHistory(n int) []domain.ReviewLogEntry {
	cards := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	base := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

	entries := make([]domain.ReviewLogEntry, 0, n)
	for i := 0; i < n; i++ {
		rating := domain.RatingGood
		if i%5 == 0 {
			rating = domain.RatingAgain
		}
		entries = append(entries, domain.ReviewLogEntry{
			ID:               int64(i + 1),
			CardID:           cards[i%len(cards)],
			Rating:           rating,
			ReviewedAt:       base.Add(time.Duration(i) * 6 * time.Hour),
			ElapsedDays:      float64(1 + i%7),
			ScheduledDays:    float64(1 + i%7),
			ReviewTimeMs:     5000,
			StabilityBefore:  2.0 + float64(i%10),
			DifficultyBefore: 5.0,
			StateBefore:      domain.LearningStateReview,
		})
	}
	return entries
}

func TestStats(t *testing.T) {
	t.Parallel()

	t.Run("empty history yields zero stats", func(t *testing.T) {
		t.Parallel()
		svc := insights.NewInsightsService(&fakeLogStore{}, &fakeParamStore{}, nil)

		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalReviews)
	})

	t.Run("aggregates the recorded history", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{entries: syntheticHistory(50)}
		svc := insights.NewInsightsService(logs, &fakeParamStore{}, nil)

		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 50, stats.TotalReviews)
		assert.InDelta(t, 0.8, stats.Accuracy, 0.01)
	})

	t.Run("wraps store failures in a service error", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{listErr: errors.New("connection reset")}
		svc := insights.NewInsightsService(logs, &fakeParamStore{}, nil)

		_, err := svc.Stats(context.Background())
		var svcErr *insights.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "stats", svcErr.Operation)
	})
}

func TestCardStats(t *testing.T) {
	t.Parallel()

	history := syntheticHistory(40)
	logs := &fakeLogStore{entries: history}
	svc := insights.NewInsightsService(logs, &fakeParamStore{}, nil)

	stats, err := svc.CardStats(context.Background(), history[0].CardID)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalReviews)

	_, err = svc.CardStats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, insights.ErrNoHistory)
}

func TestParameters(t *testing.T) {
	t.Parallel()

	t.Run("falls back to defaults when nothing is saved", func(t *testing.T) {
		t.Parallel()
		svc := insights.NewInsightsService(&fakeLogStore{}, &fakeParamStore{}, nil)

		params, err := svc.Parameters(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 0.90, params.RequestedRetention, 1e-9)
	})

	t.Run("returns the saved record", func(t *testing.T) {
		t.Parallel()
		saved := fsrs.DefaultParameters()
		saved.RequestedRetention = 0.85
		svc := insights.NewInsightsService(&fakeLogStore{}, &fakeParamStore{params: saved}, nil)

		params, err := svc.Parameters(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 0.85, params.RequestedRetention, 1e-9)
	})
}

func TestUpdateParameters(t *testing.T) {
	t.Parallel()

	t.Run("saves a valid vector", func(t *testing.T) {
		t.Parallel()
		params := &fakeParamStore{}
		svc := insights.NewInsightsService(&fakeLogStore{}, params, nil)

		next := fsrs.DefaultParameters()
		next.RequestedRetention = 0.88
		require.NoError(t, svc.UpdateParameters(context.Background(), next))

		assert.Equal(t, 1, params.saveCalls)
		assert.InDelta(t, 0.88, params.params.RequestedRetention, 1e-9)
	})

	t.Run("rejects an invalid vector without saving", func(t *testing.T) {
		t.Parallel()
		params := &fakeParamStore{}
		svc := insights.NewInsightsService(&fakeLogStore{}, params, nil)

		bad := fsrs.DefaultParameters()
		bad.RequestedRetention = 1.5
		err := svc.UpdateParameters(context.Background(), bad)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Zero(t, params.saveCalls)

		err = svc.UpdateParameters(context.Background(), nil)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestOptimizeParameters(t *testing.T) {
	t.Parallel()

	t.Run("gated run reports the deficit and saves nothing", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{entries: syntheticHistory(250)}
		params := &fakeParamStore{}
		svc := insights.NewInsightsService(logs, params, nil)

		result, err := svc.OptimizeParameters(context.Background())
		require.NoError(t, err)
		assert.False(t, result.Optimized)
		assert.Contains(t, result.Message, "need 150 more reviews")
		assert.Zero(t, params.saveCalls)
	})

	t.Run("optimized run persists a valid vector", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{entries: syntheticHistory(400)}
		params := &fakeParamStore{}
		svc := insights.NewInsightsService(logs, params, nil)

		result, err := svc.OptimizeParameters(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Optimized)
		assert.Equal(t, 1, params.saveCalls)
		require.NotNil(t, params.params)
		assert.NoError(t, params.params.Validate())
	})
}

func TestOptimalRetention(t *testing.T) {
	t.Parallel()

	t.Run("short history returns the balanced default", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{entries: syntheticHistory(99)}
		svc := insights.NewInsightsService(logs, &fakeParamStore{}, nil)

		advice, err := svc.OptimalRetention(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 0.90, advice.OptimalRetention, 1e-9)
		assert.Equal(t, 99, advice.HistorySize)
	})

	t.Run("computed target stays inside the sweep bounds", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{entries: syntheticHistory(200)}
		svc := insights.NewInsightsService(logs, &fakeParamStore{}, nil)

		advice, err := svc.OptimalRetention(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, advice.OptimalRetention, 0.70)
		assert.LessOrEqual(t, advice.OptimalRetention, 0.95)
		assert.InDelta(t, 0.80, advice.Efficiency, 1e-9)
		assert.InDelta(t, 0.90, advice.Balanced, 1e-9)
		assert.InDelta(t, 0.95, advice.Mastery, 1e-9)
	})
}
