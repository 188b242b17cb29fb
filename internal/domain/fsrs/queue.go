package fsrs

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// DueCards returns the IDs of the cards eligible for review at the given
// instant, ordered by ascending due time with ties broken by card ID so the
// result is deterministic.
//
// When the test-day lockout is enabled and today is a test day, the due-set
// is empty regardless of due dates: cramming right before an exam would
// corrupt the memory-model data the optimizer depends on.
func DueCards(
	cards []domain.CardState,
	now time.Time,
	params *Parameters,
	isTestDayToday bool,
) []uuid.UUID {
	if params.TestDayLockout && isTestDayToday {
		return []uuid.UUID{}
	}

	due := make([]domain.CardState, 0, len(cards))
	for _, card := range cards {
		if card.Suspended {
			continue
		}
		if card.DueAt.After(now) {
			continue
		}
		due = append(due, card)
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return bytes.Compare(due[i].CardID[:], due[j].CardID[:]) < 0
	})

	ids := make([]uuid.UUID, len(due))
	for i, card := range due {
		ids[i] = card.CardID
	}
	return ids
}
