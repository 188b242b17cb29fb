package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnemoapp/mnemo-api/internal/api"
	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
	"github.com/mnemoapp/mnemo-api/internal/service/review"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"card not found", review.ErrCardNotFound, http.StatusNotFound},
		{"wrapped card not found", fmt.Errorf("context: %w", review.ErrCardNotFound), http.StatusNotFound},
		{"no history", insights.ErrNoHistory, http.StatusNotFound},
		{"store not found", store.ErrCardStateNotFound, http.StatusNotFound},
		{"card exists", review.ErrCardExists, http.StatusConflict},
		{"suspended", domain.ErrCardSuspended, http.StatusConflict},
		{"invalid answer", review.ErrInvalidAnswer, http.StatusBadRequest},
		{"invalid rating", domain.ErrInvalidRating, http.StatusBadRequest},
		{"invalid days", fsrs.ErrInvalidDays, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"degenerate parameters", fsrs.ErrDegenerateParameters, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, api.MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	// The raw error text never leaks through the safe message.
	dbErr := errors.New("pq: connection to host db.internal:5432 refused")
	msg := api.GetSafeErrorMessage(review.NewSubmitAnswerError("transaction failed", dbErr))
	assert.Equal(t, "Failed to submit answer", msg)
	assert.NotContains(t, msg, "db.internal")

	assert.Equal(t, "Card not found", api.GetSafeErrorMessage(review.ErrCardNotFound))
	assert.Equal(t, "Card is suspended", api.GetSafeErrorMessage(domain.ErrCardSuspended))
	assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(nil))
	assert.Equal(t, "An unexpected error occurred", api.GetSafeErrorMessage(errors.New("boom")))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'SubmitAnswerRequest.Rating' Error:Field validation for 'Rating' failed on the 'required' tag")
	assert.Equal(t, "Rating is required", api.SanitizeValidationError(err))

	assert.Equal(t, "validation failed", api.SanitizeValidationError(errors.New("boom")))
}
