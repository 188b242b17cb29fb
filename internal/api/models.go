package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// Common request/response structures

// CreateCardRequest defines the payload for the card creation endpoint.
// CardID is optional; when omitted the server assigns one.
type CreateCardRequest struct {
	CardID string `json:"card_id" validate:"omitempty,uuid4"`
}

// SubmitAnswerRequest defines the payload for the review submission endpoint.
type SubmitAnswerRequest struct {
	Rating       int   `json:"rating"         validate:"required,min=1,max=4"`
	ReviewTimeMs int64 `json:"review_time_ms" validate:"gte=0"`
}

// PostponeRequest defines the payload for the postpone endpoint.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// CardStateResponse represents the scheduling state of one card.
type CardStateResponse struct {
	CardID         string     `json:"card_id"`
	Stability      float64    `json:"stability"`
	Difficulty     float64    `json:"difficulty"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	State          string     `json:"state"`
	Lapses         int        `json:"lapses"`
	Reps           int        `json:"reps"`
	Suspended      bool       `json:"suspended"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DueCardsResponse lists the cards eligible for review, most overdue first.
type DueCardsResponse struct {
	CardIDs []uuid.UUID `json:"card_ids"`
	Count   int         `json:"count"`
}

// cardToResponse converts a domain card state to its API representation.
// A zero LastReviewedAt (never reviewed) is rendered as an absent field
// rather than the zero time.
func cardToResponse(card *domain.CardState) CardStateResponse {
	resp := CardStateResponse{
		CardID:     card.CardID.String(),
		Stability:  card.Stability,
		Difficulty: card.Difficulty,
		DueAt:      card.DueAt,
		State:      string(card.State),
		Lapses:     card.Lapses,
		Reps:       card.Reps,
		Suspended:  card.Suspended,
		CreatedAt:  card.CreatedAt,
		UpdatedAt:  card.UpdatedAt,
	}
	if !card.LastReviewedAt.IsZero() {
		t := card.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	return resp
}
