package fsrs

import (
	"math"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// Retrievability predicts the probability of successful recall after
// elapsedDays, given the card's stability.
//
// The forgetting curve is R(S, t) = (1 + F*t/S)^(-power) with the fixed
// decay constants F=0.5 and power=0.5. The numeric edge cases are defined
// rather than raised: for non-positive stability or elapsed time the card
// is treated as fully retrievable (R = 1.0).
func Retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 || elapsedDays <= 0 {
		return 1.0
	}
	return math.Pow(1+decayFactor*elapsedDays/stability, -decayPower)
}

// nextInterval solves the forgetting curve for the elapsed time at which
// retrievability decays to the requested retention:
//
//	interval = S * (r^(-1/power) - 1) / F
func nextInterval(stability, requestedRetention float64) float64 {
	return stability * (math.Pow(requestedRetention, -1/decayPower) - 1) / decayFactor
}

// initialStability is the rating-conditioned first stability estimate for a
// card leaving the New state, floored at the minimum stability.
func initialStability(w *[WeightCount]float64, rating domain.Rating) float64 {
	return math.Max(w[rating-1], minStability)
}

// initialDifficulty is the rating-conditioned first difficulty estimate,
// clamped to [1,10]. Harder first impressions yield higher difficulty.
func initialDifficulty(w *[WeightCount]float64, rating domain.Rating) float64 {
	d := w[4] - math.Exp(w[5]*(float64(rating)-1)) + 1
	return clampDifficulty(d)
}

// nextDifficulty applies the rating-weighted exponential moving update:
// a linear-damped delta toward the rating, then mean reversion toward the
// initial Easy difficulty, clamped to [1,10].
func nextDifficulty(w *[WeightCount]float64, difficulty float64, rating domain.Rating) float64 {
	delta := -w[6] * (float64(rating) - 3)
	damped := difficulty + delta*(10-difficulty)/9
	reverted := w[7]*initialDifficulty(w, domain.RatingEasy) + (1-w[7])*damped
	return clampDifficulty(reverted)
}

// stabilityAfterRecall is the stability-growth formula for a successful
// review. Growth scales inversely with the predicted retrievability (the
// closer a review comes to being forgotten, the more it reinforces) and
// directly with the rating: Hard grows least, Easy grows most.
func stabilityAfterRecall(
	w *[WeightCount]float64,
	difficulty, stability, retrievability float64,
	rating domain.Rating,
) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = w[15]
	}

	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = w[16]
	}

	growth := math.Exp(w[8]) *
		(11 - difficulty) *
		math.Pow(stability, -w[9]) *
		(math.Exp(w[10]*(1-retrievability)) - 1) *
		hardPenalty *
		easyBonus

	return stability * (1 + growth)
}

// stabilityAfterLapse is the post-lapse stability formula. The result is
// bounded below by the minimum stability floor and never exceeds the
// pre-lapse stability.
func stabilityAfterLapse(
	w *[WeightCount]float64,
	difficulty, stability, retrievability float64,
) float64 {
	s := w[11] *
		math.Pow(difficulty, -w[12]) *
		(math.Pow(stability+1, w[13]) - 1) *
		math.Exp(w[14]*(1-retrievability))

	return math.Max(minStability, math.Min(s, stability))
}

// stabilityShortTerm is the short-term stability-increase formula applied
// when a card graduates out of the learning or relearning steps.
func stabilityShortTerm(w *[WeightCount]float64, stability float64, rating domain.Rating) float64 {
	return stability * math.Exp(w[17]*(float64(rating)-3+w[18]))
}

func clampDifficulty(d float64) float64 {
	return math.Max(1, math.Min(10, d))
}
