package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemoapp/mnemo-api/internal/api"
	"github.com/mnemoapp/mnemo-api/internal/config"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
)

// newTestApp wires a full application against an in-memory sqlite database.
func newTestApp(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:     8080,
			LogLevel: "error",
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			URL:    ":memory:",
		},
		Scheduler: config.SchedulerConfig{
			NodeID: 1,
			// No cron schedule; optimization runs only on demand in tests.
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(cfg, log)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return app
}

func doJSON(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	router := app.setupRouter()

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReviewLifecycle(t *testing.T) {
	app := newTestApp(t)
	router := app.setupRouter()

	// Create a card.
	rec := doJSON(t, router, http.MethodPost, "/api/cards", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var card api.CardStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "new", card.State)

	// The fresh card is due immediately.
	rec = doJSON(t, router, http.MethodGet, "/api/cards/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due api.DueCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	require.Equal(t, 1, due.Count)
	assert.Equal(t, card.CardID, due.CardIDs[0].String())

	// A test day empties the due set.
	rec = doJSON(t, router, http.MethodGet, "/api/cards/due?test_day=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Zero(t, due.Count)

	// Answer the review.
	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/review",
		[]byte(`{"rating": 3, "review_time_ms": 4000}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var reviewed api.CardStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviewed))
	assert.Equal(t, "review", reviewed.State)
	assert.Equal(t, 1, reviewed.Reps)
	assert.Positive(t, reviewed.Stability)
	assert.NotNil(t, reviewed.LastReviewedAt)

	// The answered card left the due set.
	rec = doJSON(t, router, http.MethodGet, "/api/cards/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Zero(t, due.Count)

	// The review shows up in the statistics.
	rec = doJSON(t, router, http.MethodGet, "/api/insights/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats fsrs.ReviewStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalReviews)
	assert.InDelta(t, 1.0, stats.Accuracy, 1e-9)
}

func TestSuspensionFlow(t *testing.T) {
	app := newTestApp(t)
	router := app.setupRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/cards", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var card api.CardStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))

	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/suspend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Reviewing a suspended card conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/review",
		[]byte(`{"rating": 3}`))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Suspended cards never appear in the due set.
	rec = doJSON(t, router, http.MethodGet, "/api/cards/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due api.DueCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Zero(t, due.Count)

	// Unsuspending brings the card back.
	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/unsuspend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/review",
		[]byte(`{"rating": 3}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostponeEndpointFlow(t *testing.T) {
	app := newTestApp(t)
	router := app.setupRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/cards", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var card api.CardStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))

	rec = doJSON(t, router, http.MethodPost, "/api/cards/"+card.CardID+"/postpone",
		[]byte(`{"days": 5}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var postponed api.CardStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &postponed))
	assert.True(t, postponed.DueAt.After(card.DueAt))

	// The postponed card left the due set.
	rec = doJSON(t, router, http.MethodGet, "/api/cards/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var due api.DueCardsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &due))
	assert.Zero(t, due.Count)
}

func TestParametersEndpointsFlow(t *testing.T) {
	app := newTestApp(t)
	router := app.setupRouter()

	// Defaults come back before anything is saved.
	rec := doJSON(t, router, http.MethodGet, "/api/parameters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	params, err := fsrs.DecodeParameters(rec.Body.Bytes())
	require.NoError(t, err)
	assert.InDelta(t, 0.90, params.RequestedRetention, 1e-9)

	// Replace the vector and read it back.
	params.RequestedRetention = 0.85
	body, err := json.Marshal(params)
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodPut, "/api/parameters", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/parameters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	saved, err := fsrs.DecodeParameters(rec.Body.Bytes())
	require.NoError(t, err)
	assert.InDelta(t, 0.85, saved.RequestedRetention, 1e-9)

	// A degenerate vector is rejected.
	params.RequestedRetention = 1.5
	body, err = json.Marshal(params)
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodPut, "/api/parameters", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Optimization with an empty history is gated, not an error.
	rec = doJSON(t, router, http.MethodPost, "/api/parameters/optimize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result fsrs.OptimizationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Optimized)
	assert.Contains(t, result.Message, "more reviews")

	// Retention advice falls back to the balanced default without history.
	rec = doJSON(t, router, http.MethodGet, "/api/insights/retention", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupCronRejectsBadSchedule(t *testing.T) {
	app := newTestApp(t)
	app.config.Scheduler.OptimizeCron = "not a schedule"

	err := app.setupCron()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "optimize_cron")
}
