package fsrs

import (
	"math"
	"sort"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// suspiciousReviewTimeMs is the response-time floor below which an answer is
// considered too fast to be a genuine recall attempt.
const suspiciousReviewTimeMs = 1000

// Trend describes how accuracy developed between the first and second half
// of the review history.
type Trend string

// Possible trend values.
const (
	TrendImproving Trend = "improving"
	TrendSteady    Trend = "steady"
	TrendDeclining Trend = "declining"
)

// CheatRisk classifies how likely it is that the review history is being
// gamed, based on the fraction of suspiciously fast answers.
type CheatRisk string

// Possible cheat-risk values.
const (
	CheatRiskLow    CheatRisk = "low"
	CheatRiskMedium CheatRisk = "medium"
	CheatRiskHigh   CheatRisk = "high"
)

// RetentionBucket aggregates pass/fail counts for reviews whose elapsed time
// fell into the same whole-day bucket.
type RetentionBucket struct {
	ElapsedDays int     `json:"elapsed_days"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Retention   float64 `json:"retention"`
}

// ReviewStats is the read-only aggregate of a review-history collection.
type ReviewStats struct {
	TotalReviews       int                   `json:"total_reviews"`
	Accuracy           float64               `json:"accuracy"`
	MeanReviewTimeMs   float64               `json:"mean_review_time_ms"`
	RatingCounts       map[domain.Rating]int `json:"rating_counts"`
	SuspiciousCount    int                   `json:"suspicious_count"`
	SuspiciousFraction float64               `json:"suspicious_fraction"`
	MeanStability      float64               `json:"mean_stability"`
	MeanDifficulty     float64               `json:"mean_difficulty"`
	RetentionByDay     []RetentionBucket     `json:"retention_by_day"`
	Trend              Trend                 `json:"trend"`
	CheatRisk          CheatRisk             `json:"cheat_risk"`

	// Session-length and strongest-hour insights are not computed yet; the
	// upstream definition for them is unresolved, so they stay zero instead
	// of carrying a made-up number.
	MeanSessionLength float64 `json:"mean_session_length"`
	StrongestHour     int     `json:"strongest_hour"`
}

// CalculateReviewStats aggregates a review history into accuracy, response
// time, retention and anomaly signals. The input is read-only; order does
// not matter, the trend computation sorts a copy chronologically.
func CalculateReviewStats(history []domain.ReviewLogEntry) *ReviewStats {
	stats := &ReviewStats{
		RatingCounts: make(map[domain.Rating]int),
		Trend:        TrendSteady,
		CheatRisk:    CheatRiskLow,
	}

	if len(history) == 0 {
		stats.RetentionByDay = []RetentionBucket{}
		return stats
	}

	stats.TotalReviews = len(history)

	var (
		passed         int
		totalTimeMs    int64
		stabilitySum   float64
		difficultySum  float64
		stabilityCount int
	)

	buckets := make(map[int]*RetentionBucket)

	for _, entry := range history {
		stats.RatingCounts[entry.Rating]++
		totalTimeMs += entry.ReviewTimeMs

		if entry.ReviewTimeMs < suspiciousReviewTimeMs {
			stats.SuspiciousCount++
		}

		if entry.StabilityBefore > 0 {
			stabilitySum += entry.StabilityBefore
			difficultySum += entry.DifficultyBefore
			stabilityCount++
		}

		day := int(math.Floor(entry.ElapsedDays))
		bucket, ok := buckets[day]
		if !ok {
			bucket = &RetentionBucket{ElapsedDays: day}
			buckets[day] = bucket
		}

		if entry.Succeeded() {
			passed++
			bucket.Passed++
		} else {
			bucket.Failed++
		}
	}

	total := float64(stats.TotalReviews)
	stats.Accuracy = float64(passed) / total
	stats.MeanReviewTimeMs = float64(totalTimeMs) / total
	stats.SuspiciousFraction = float64(stats.SuspiciousCount) / total

	if stabilityCount > 0 {
		stats.MeanStability = stabilitySum / float64(stabilityCount)
		stats.MeanDifficulty = difficultySum / float64(stabilityCount)
	}

	stats.RetentionByDay = make([]RetentionBucket, 0, len(buckets))
	for _, bucket := range buckets {
		if n := bucket.Passed + bucket.Failed; n > 0 {
			bucket.Retention = float64(bucket.Passed) / float64(n)
		}
		stats.RetentionByDay = append(stats.RetentionByDay, *bucket)
	}
	sort.Slice(stats.RetentionByDay, func(i, j int) bool {
		return stats.RetentionByDay[i].ElapsedDays < stats.RetentionByDay[j].ElapsedDays
	})

	stats.Trend = accuracyTrend(history)

	switch {
	case stats.SuspiciousFraction > 0.5:
		stats.CheatRisk = CheatRiskHigh
	case stats.SuspiciousFraction > 0.2:
		stats.CheatRisk = CheatRiskMedium
	}

	return stats
}

// accuracyTrend compares the accuracy of the first half of the
// chronologically ordered history against the second half, with a ±0.05
// neutral band.
func accuracyTrend(history []domain.ReviewLogEntry) Trend {
	if len(history) < 2 {
		return TrendSteady
	}

	ordered := make([]domain.ReviewLogEntry, len(history))
	copy(ordered, history)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ReviewedAt.Before(ordered[j].ReviewedAt)
	})

	mid := len(ordered) / 2
	first := halfAccuracy(ordered[:mid])
	second := halfAccuracy(ordered[mid:])

	switch diff := second - first; {
	case diff > 0.05:
		return TrendImproving
	case diff < -0.05:
		return TrendDeclining
	default:
		return TrendSteady
	}
}

func halfAccuracy(entries []domain.ReviewLogEntry) float64 {
	if len(entries) == 0 {
		return 0
	}

	passed := 0
	for _, entry := range entries {
		if entry.Succeeded() {
			passed++
		}
	}
	return float64(passed) / float64(len(entries))
}
