package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/api/shared"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/redact"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
)

// InsightsHandler handles statistics, parameter and retention HTTP requests.
type InsightsHandler struct {
	insightsService insights.InsightsService
	logger          *slog.Logger
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insightsService insights.InsightsService, log *slog.Logger) *InsightsHandler {
	if insightsService == nil {
		panic("insightsService cannot be nil for InsightsHandler")
	}
	if log == nil {
		panic("logger cannot be nil for InsightsHandler")
	}

	return &InsightsHandler{
		insightsService: insightsService,
		logger:          log.With(slog.String("component", "insights_handler")),
	}
}

// Stats handles GET /insights/stats requests.
// Without parameters it aggregates the whole review history; with the
// card_id query parameter it aggregates one card's history.
func (h *InsightsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var stats *fsrs.ReviewStats
	var err error

	if raw := r.URL.Query().Get("card_id"); raw != "" {
		cardID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			log.Warn("invalid card ID format", slog.String("card_id", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
			return
		}
		stats, err = h.insightsService.CardStats(r.Context(), cardID)
	} else {
		stats, err = h.insightsService.Stats(r.Context())
	}

	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Retention handles GET /insights/retention requests.
// It returns the retention target computed from the review history together
// with the fixed goal presets.
func (h *InsightsHandler) Retention(w http.ResponseWriter, r *http.Request) {
	advice, err := h.insightsService.OptimalRetention(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, advice)
}

// GetParameters handles GET /parameters requests.
func (h *InsightsHandler) GetParameters(w http.ResponseWriter, r *http.Request) {
	params, err := h.insightsService.Parameters(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, params)
}

// UpdateParameters handles PUT /parameters requests.
// The body must be a complete parameter record; unknown fields and
// degenerate weight vectors are rejected.
func (h *InsightsHandler) UpdateParameters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	body := http.MaxBytesReader(w, r.Body, 1<<16)
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(body)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	params, err := fsrs.DecodeParameters(raw)
	if err != nil {
		log.Warn("rejected parameter update", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid parameter record")
		return
	}

	if err := h.insightsService.UpdateParameters(r.Context(), params); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("updated scheduling parameters",
		slog.Float64("requested_retention", params.RequestedRetention))
	shared.RespondWithJSON(w, r, http.StatusOK, params)
}

// OptimizeParameters handles POST /parameters/optimize requests.
// A history below the optimizer's gate still returns 200: the result
// carries optimized=false and a message telling how many more reviews are
// needed.
func (h *InsightsHandler) OptimizeParameters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	result, err := h.insightsService.OptimizeParameters(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("parameter optimization run finished",
		slog.Bool("optimized", result.Optimized),
		slog.Int("review_count", result.ReviewCount))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
