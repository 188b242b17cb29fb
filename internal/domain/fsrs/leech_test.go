package fsrs

import (
	"testing"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

func TestEvaluateLeech(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		lapses      int
		threshold   int
		autoSuspend bool
		expected    LeechDecision
	}{
		{
			name:      "below threshold",
			lapses:    3,
			threshold: 6,
			expected:  LeechNone,
		},
		{
			name:      "one below threshold",
			lapses:    5,
			threshold: 6,
			expected:  LeechNone,
		},
		{
			name:      "at threshold without auto-suspend",
			lapses:    6,
			threshold: 6,
			expected:  LeechFlagged,
		},
		{
			name:        "at threshold with auto-suspend",
			lapses:      6,
			threshold:   6,
			autoSuspend: true,
			expected:    LeechSuspended,
		},
		{
			name:      "far past threshold without auto-suspend",
			lapses:    20,
			threshold: 6,
			expected:  LeechFlagged,
		},
		{
			name:        "far past threshold with auto-suspend",
			lapses:      20,
			threshold:   6,
			expected:    LeechSuspended,
			autoSuspend: true,
		},
		{
			name:        "zero lapses never a leech",
			lapses:      0,
			threshold:   1,
			autoSuspend: true,
			expected:    LeechNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParameters()
			params.LeechThreshold = tc.threshold
			params.AutoSuspendLeeches = tc.autoSuspend

			card := &domain.CardState{
				Lapses: tc.lapses,
				Reps:   tc.lapses + 5,
			}

			got := EvaluateLeech(card, params)
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
