package fsrs

import "github.com/mnemoapp/mnemo-api/internal/domain"

// LeechDecision is the outcome of evaluating a card against the leech
// threshold.
type LeechDecision int

// Possible leech decisions.
const (
	// LeechNone means the card is below the threshold and stays in rotation.
	LeechNone LeechDecision = iota

	// LeechFlagged means the card crossed the threshold; the caller should
	// surface it to the user but keep it in rotation.
	LeechFlagged

	// LeechSuspended means the card crossed the threshold and auto-suspension
	// is enabled; the caller must set the card's Suspended flag.
	LeechSuspended
)

// String returns the lowercase name of the decision.
func (d LeechDecision) String() string {
	switch d {
	case LeechFlagged:
		return "flagged"
	case LeechSuspended:
		return "suspended"
	default:
		return "none"
	}
}

// EvaluateLeech compares a card's lapse count against the configured leech
// threshold. It should be called after every schedule operation that
// incremented the lapse count.
func EvaluateLeech(card *domain.CardState, params *Parameters) LeechDecision {
	if card.Lapses < params.LeechThreshold {
		return LeechNone
	}

	if params.AutoSuspendLeeches {
		return LeechSuspended
	}

	return LeechFlagged
}
