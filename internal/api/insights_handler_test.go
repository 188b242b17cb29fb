package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemoapp/mnemo-api/internal/api"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
)

// fakeInsightsService is a stub InsightsService whose behavior is set per test.
type fakeInsightsService struct {
	statsFn     func(ctx context.Context) (*fsrs.ReviewStats, error)
	cardStatsFn func(ctx context.Context, cardID uuid.UUID) (*fsrs.ReviewStats, error)
	paramsFn    func(ctx context.Context) (*fsrs.Parameters, error)
	updateFn    func(ctx context.Context, params *fsrs.Parameters) error
	optimizeFn  func(ctx context.Context) (*fsrs.OptimizationResult, error)
	retentionFn func(ctx context.Context) (*insights.RetentionAdvice, error)
}

func (f *fakeInsightsService) Stats(ctx context.Context) (*fsrs.ReviewStats, error) {
	return f.statsFn(ctx)
}

func (f *fakeInsightsService) CardStats(ctx context.Context, cardID uuid.UUID) (*fsrs.ReviewStats, error) {
	return f.cardStatsFn(ctx, cardID)
}

func (f *fakeInsightsService) Parameters(ctx context.Context) (*fsrs.Parameters, error) {
	return f.paramsFn(ctx)
}

func (f *fakeInsightsService) UpdateParameters(ctx context.Context, params *fsrs.Parameters) error {
	return f.updateFn(ctx, params)
}

func (f *fakeInsightsService) OptimizeParameters(ctx context.Context) (*fsrs.OptimizationResult, error) {
	return f.optimizeFn(ctx)
}

func (f *fakeInsightsService) OptimalRetention(ctx context.Context) (*insights.RetentionAdvice, error) {
	return f.retentionFn(ctx)
}

func newInsightsRouter(svc insights.InsightsService) http.Handler {
	h := api.NewInsightsHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/insights/stats", h.Stats)
	r.Get("/insights/retention", h.Retention)
	r.Get("/parameters", h.GetParameters)
	r.Put("/parameters", h.UpdateParameters)
	r.Post("/parameters/optimize", h.OptimizeParameters)
	return r
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("aggregate stats", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			statsFn: func(_ context.Context) (*fsrs.ReviewStats, error) {
				return &fsrs.ReviewStats{TotalReviews: 12, Accuracy: 0.75}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/insights/stats", nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var stats fsrs.ReviewStats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, 12, stats.TotalReviews)
	})

	t.Run("per-card stats via query parameter", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		svc := &fakeInsightsService{
			cardStatsFn: func(_ context.Context, cardID uuid.UUID) (*fsrs.ReviewStats, error) {
				assert.Equal(t, id, cardID)
				return &fsrs.ReviewStats{TotalReviews: 3}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/insights/stats?card_id="+id.String(), nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("card without history returns 404", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			cardStatsFn: func(_ context.Context, _ uuid.UUID) (*fsrs.ReviewStats, error) {
				return nil, insights.ErrNoHistory
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/insights/stats?card_id="+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed card_id returns 400", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{}

		req := httptest.NewRequest(http.MethodGet, "/insights/stats?card_id=bogus", nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRetentionEndpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeInsightsService{
		retentionFn: func(_ context.Context) (*insights.RetentionAdvice, error) {
			return &insights.RetentionAdvice{
				OptimalRetention: 0.87,
				HistorySize:      220,
				Efficiency:       0.80,
				Balanced:         0.90,
				Mastery:          0.95,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/insights/retention", nil)
	rec := httptest.NewRecorder()
	newInsightsRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var advice insights.RetentionAdvice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advice))
	assert.InDelta(t, 0.87, advice.OptimalRetention, 1e-9)
	assert.Equal(t, 220, advice.HistorySize)
}

func TestParametersEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("get returns the active vector", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			paramsFn: func(_ context.Context) (*fsrs.Parameters, error) {
				return fsrs.DefaultParameters(), nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/parameters", nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		params, err := fsrs.DecodeParameters(rec.Body.Bytes())
		require.NoError(t, err)
		assert.InDelta(t, 0.90, params.RequestedRetention, 1e-9)
	})

	t.Run("put replaces the vector", func(t *testing.T) {
		t.Parallel()
		var saved *fsrs.Parameters
		svc := &fakeInsightsService{
			updateFn: func(_ context.Context, params *fsrs.Parameters) error {
				saved = params
				return nil
			},
		}

		next := fsrs.DefaultParameters()
		next.RequestedRetention = 0.85
		body, err := json.Marshal(next)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/parameters", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, saved)
		assert.InDelta(t, 0.85, saved.RequestedRetention, 1e-9)
	})

	t.Run("put rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			updateFn: func(_ context.Context, _ *fsrs.Parameters) error {
				t.Fatal("service should not be called")
				return nil
			},
		}

		body := []byte(`{"surprise_field": 1}`)
		req := httptest.NewRequest(http.MethodPut, "/parameters", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOptimizeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("gated run still returns 200 with the deficit message", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			optimizeFn: func(_ context.Context) (*fsrs.OptimizationResult, error) {
				return &fsrs.OptimizationResult{
					Parameters:  fsrs.DefaultParameters(),
					Optimized:   false,
					ReviewCount: 250,
					Message:     "not enough review history to fit parameters: need 150 more reviews",
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/parameters/optimize", nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result fsrs.OptimizationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Optimized)
		assert.Contains(t, result.Message, "need 150 more reviews")
	})

	t.Run("service failures map to 500 with a safe message", func(t *testing.T) {
		t.Parallel()
		svc := &fakeInsightsService{
			optimizeFn: func(_ context.Context) (*fsrs.OptimizationResult, error) {
				return nil, insights.NewOptimizeError("failed to list review history", assert.AnError)
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/parameters/optimize", nil)
		rec := httptest.NewRecorder()
		newInsightsRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to optimize parameters")
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}
