package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReviewLogEntryValidate(t *testing.T) {
	t.Parallel()

	validEntry := func() *ReviewLogEntry {
		return &ReviewLogEntry{
			ID:               1,
			CardID:           uuid.New(),
			Rating:           RatingGood,
			ReviewedAt:       time.Now().UTC(),
			ElapsedDays:      3.5,
			ScheduledDays:    4.0,
			ReviewTimeMs:     4200,
			StabilityBefore:  6.1,
			DifficultyBefore: 5.0,
			StateBefore:      LearningStateReview,
		}
	}

	testCases := []struct {
		name     string
		mutate   func(*ReviewLogEntry)
		expected error
	}{
		{
			name:     "valid entry",
			mutate:   func(e *ReviewLogEntry) {},
			expected: nil,
		},
		{
			name:     "missing card ID",
			mutate:   func(e *ReviewLogEntry) { e.CardID = uuid.Nil },
			expected: ErrEmptyCardID,
		},
		{
			name:     "rating out of range",
			mutate:   func(e *ReviewLogEntry) { e.Rating = 5 },
			expected: ErrInvalidRating,
		},
		{
			name:     "zero reviewed-at",
			mutate:   func(e *ReviewLogEntry) { e.ReviewedAt = time.Time{} },
			expected: ErrEmptyReviewedAt,
		},
		{
			name:     "negative elapsed days",
			mutate:   func(e *ReviewLogEntry) { e.ElapsedDays = -0.1 },
			expected: ErrNegativeElapsedDays,
		},
		{
			name:     "negative review time",
			mutate:   func(e *ReviewLogEntry) { e.ReviewTimeMs = -1 },
			expected: ErrNegativeReviewTime,
		},
		{
			name:     "unknown prior state",
			mutate:   func(e *ReviewLogEntry) { e.StateBefore = LearningState("archived") },
			expected: ErrInvalidLearningState,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			entry := validEntry()
			tc.mutate(entry)

			if err := entry.Validate(); !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestReviewLogEntrySucceeded(t *testing.T) {
	t.Parallel()

	expectations := map[Rating]bool{
		RatingAgain: false,
		RatingHard:  true,
		RatingGood:  true,
		RatingEasy:  true,
	}

	for rating, want := range expectations {
		entry := &ReviewLogEntry{Rating: rating}
		if got := entry.Succeeded(); got != want {
			t.Errorf("Succeeded() with rating %s = %v, want %v", rating, got, want)
		}
	}
}

func TestReviewLogEntryJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := &ReviewLogEntry{
		ID:               42,
		CardID:           uuid.New(),
		Rating:           RatingHard,
		ReviewedAt:       time.Date(2026, 1, 15, 18, 4, 7, 0, time.UTC),
		ElapsedDays:      2.718281828,
		ScheduledDays:    3.141592653,
		ReviewTimeMs:     6800,
		StabilityBefore:  9.876543210,
		DifficultyBefore: 6.543210987,
		StateBefore:      LearningStateReview,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ReviewLogEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	floats := []struct {
		name string
		got  float64
		want float64
	}{
		{"elapsed_days", decoded.ElapsedDays, original.ElapsedDays},
		{"scheduled_days", decoded.ScheduledDays, original.ScheduledDays},
		{"stability_before", decoded.StabilityBefore, original.StabilityBefore},
		{"difficulty_before", decoded.DifficultyBefore, original.DifficultyBefore},
	}
	for _, f := range floats {
		if math.Abs(f.got-f.want) > 1e-9 {
			t.Errorf("%s drifted: %v != %v", f.name, f.got, f.want)
		}
	}

	if decoded.ID != original.ID || decoded.CardID != original.CardID ||
		decoded.Rating != original.Rating || decoded.StateBefore != original.StateBefore {
		t.Error("Discrete fields drifted through the round trip")
	}
	if !decoded.ReviewedAt.Equal(original.ReviewedAt) {
		t.Error("ReviewedAt drifted through the round trip")
	}
}
