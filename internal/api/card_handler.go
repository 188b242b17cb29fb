// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/api/shared"
	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/platform/logger"
	"github.com/mnemoapp/mnemo-api/internal/redact"
	"github.com/mnemoapp/mnemo-api/internal/service/review"
)

// CardHandler handles card scheduling HTTP requests.
type CardHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(reviewService review.ReviewService, log *slog.Logger) *CardHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil for CardHandler")
	}
	if log == nil {
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /cards requests.
// It creates fresh scheduling state for a card, due immediately.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			log.Warn("invalid request format", slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := shared.ValidateRequest(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	cardID := uuid.Nil
	if req.CardID != "" {
		parsed, err := uuid.Parse(req.CardID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
			return
		}
		cardID = parsed
	}

	card, err := h.reviewService.CreateCard(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("created card", slog.String("card_id", card.CardID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /cards/{id} requests.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardIDFromPath(w, r)
	if !ok {
		return
	}

	card, err := h.reviewService.GetCard(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DueCards handles GET /cards/due requests.
// It returns the IDs of the cards eligible for review right now, most
// overdue first. The optional test_day=true query flag empties the set for
// the day, per the exam-lockout policy.
func (h *CardHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	isTestDay := r.URL.Query().Get("test_day") == "true"

	due, err := h.reviewService.DueCards(r.Context(), time.Now().UTC(), isTestDay)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if due == nil {
		due = []uuid.UUID{}
	}

	log.Debug("selected due cards", slog.Int("count", len(due)), slog.Bool("test_day", isTestDay))
	shared.RespondWithJSON(w, r, http.StatusOK, DueCardsResponse{CardIDs: due, Count: len(due)})
}

// SubmitAnswer handles POST /cards/{id}/review requests.
// It processes an answered review and returns the rescheduled card state.
func (h *CardHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := h.cardIDFromPath(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.reviewService.SubmitAnswer(r.Context(), cardID, review.ReviewAnswer{
		Rating:       domain.Rating(req.Rating),
		ReviewTimeMs: req.ReviewTimeMs,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCardSuspended) {
			log.Debug("rejected review of suspended card", slog.String("card_id", cardID.String()))
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("processed review",
		slog.String("card_id", cardID.String()),
		slog.String("state", string(card.State)))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PostponeCard handles POST /cards/{id}/postpone requests.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := h.cardIDFromPath(w, r)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.reviewService.PostponeCard(r.Context(), cardID, req.Days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("postponed card",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// SuspendCard handles POST /cards/{id}/suspend requests.
func (h *CardHandler) SuspendCard(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, true)
}

// UnsuspendCard handles POST /cards/{id}/unsuspend requests.
func (h *CardHandler) UnsuspendCard(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, false)
}

func (h *CardHandler) setSuspended(w http.ResponseWriter, r *http.Request, suspended bool) {
	cardID, ok := h.cardIDFromPath(w, r)
	if !ok {
		return
	}

	var card *domain.CardState
	var err error
	if suspended {
		card, err = h.reviewService.SuspendCard(r.Context(), cardID)
	} else {
		card, err = h.reviewService.UnsuspendCard(r.Context(), cardID)
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// cardIDFromPath extracts and parses the card ID from the URL path. On
// failure it writes the error response and returns ok=false.
func (h *CardHandler) cardIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pathCardID := chi.URLParam(r, "id")
	if pathCardID == "" {
		log.Warn("card ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Card ID is required")
		return uuid.Nil, false
	}

	cardID, err := uuid.Parse(pathCardID)
	if err != nil {
		log.Warn("invalid card ID format", slog.String("card_id", pathCardID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return uuid.Nil, false
	}

	return cardID, true
}
