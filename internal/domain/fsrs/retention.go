package fsrs

import (
	"math"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// Defaults and bounds for the retention advisor.
const (
	// DefaultAvgReviewTimeSeconds is the assumed cost of one successful review.
	DefaultAvgReviewTimeSeconds = 8.0

	// DefaultAvgRelearnTimeSeconds is the assumed cost of relearning a
	// forgotten card.
	DefaultAvgRelearnTimeSeconds = 30.0

	// minHistoryForRetention gates the advisor; with less data it returns
	// the balanced default.
	minHistoryForRetention = 100

	minCandidateRetention = 0.70
	maxCandidateRetention = 0.95
	retentionSweepStep    = 0.01

	// fallbackMeanStability stands in when no entry carries a usable
	// stability snapshot.
	fallbackMeanStability = 10.0

	daysPerYear = 365.0
)

// RetentionGoal is a user-facing shortcut for picking a retention target
// without consulting the review history.
type RetentionGoal string

// Possible retention goals.
const (
	RetentionGoalEfficiency RetentionGoal = "efficiency"
	RetentionGoalBalanced   RetentionGoal = "balanced"
	RetentionGoalMastery    RetentionGoal = "mastery"
)

// RecommendedRetention maps a goal onto a fixed retention target. Unknown
// goals fall back to the balanced default.
func RecommendedRetention(goal RetentionGoal) float64 {
	switch goal {
	case RetentionGoalEfficiency:
		return 0.80
	case RetentionGoalMastery:
		return 0.95
	default:
		return 0.90
	}
}

// CalculateOptimalRetention computes the retention target that minimizes
// total expected study time for this user, given cost assumptions for a
// successful review and for relearning a lapse.
//
// A higher target means shorter intervals and more reviews per year; a lower
// target means fewer reviews but more lapses, each costing relearn time. The
// advisor sweeps candidate targets from 0.70 to 0.95 in steps of 0.01 over
// the user's mean stability and returns the cheapest one, rounded to two
// decimals. With fewer than 100 history entries it returns the balanced
// default of 0.90.
func CalculateOptimalRetention(
	history []domain.ReviewLogEntry,
	avgReviewTimeSeconds, avgRelearnTimeSeconds float64,
) float64 {
	if len(history) < minHistoryForRetention {
		return 0.90
	}

	meanStability := meanStabilityBefore(history)

	bestRetention := minCandidateRetention
	bestTime := math.Inf(1)

	steps := int(math.Round((maxCandidateRetention - minCandidateRetention) / retentionSweepStep))
	for i := 0; i <= steps; i++ {
		r := minCandidateRetention + float64(i)*retentionSweepStep

		interval := nextInterval(meanStability, r)
		reviewsPerYear := math.Max(1, daysPerYear/interval)
		lapsesPerYear := reviewsPerYear * (1 - r)
		totalTime := reviewsPerYear*avgReviewTimeSeconds + lapsesPerYear*avgRelearnTimeSeconds

		if totalTime < bestTime {
			bestTime = totalTime
			bestRetention = r
		}
	}

	return math.Round(bestRetention*100) / 100
}

func meanStabilityBefore(history []domain.ReviewLogEntry) float64 {
	var (
		sum   float64
		count int
	)

	for _, entry := range history {
		if entry.StabilityBefore > 0 {
			sum += entry.StabilityBefore
			count++
		}
	}

	if count == 0 {
		return fallbackMeanStability
	}
	return sum / float64(count)
}
