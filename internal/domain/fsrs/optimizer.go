package fsrs

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// MinReviewsForOptimization is the minimum review-history size before the
// parameter search runs. Below this, fitted weights would mostly encode
// noise, so the optimizer reports metrics for the current vector instead.
const MinReviewsForOptimization = 400

const (
	// probabilityEpsilon clamps predicted probabilities away from 0 and 1
	// so the log-loss stays finite.
	probabilityEpsilon = 1e-6

	// descentSweeps bounds the coordinate-descent passes over the weight
	// vector.
	descentSweeps = 4

	// lossImprovementTolerance is the minimum loss decrease for a candidate
	// weight to be adopted, guarding against float noise.
	lossImprovementTolerance = 1e-9
)

// OptimizationResult reports the outcome of a parameter-fitting run.
// Optimized=false is not a failure: it is the documented outcome when the
// history gate is not met, and Message explains how many more reviews are
// needed.
type OptimizationResult struct {
	Parameters    *Parameters `json:"parameters"`
	Optimized     bool        `json:"optimized"`
	RetentionRate float64     `json:"retention_rate"`
	RMSE          float64     `json:"rmse"`
	LogLoss       float64     `json:"log_loss"`
	ReviewCount   int         `json:"review_count"`
	Message       string      `json:"message"`
}

// OptimizeParameters evaluates how well the current parameter vector fits
// the accumulated review history and, when enough data exists, searches for
// a better weight vector.
//
// The search is a bounded coordinate descent minimizing the log-loss of
// retrievability predictions obtained by replaying each card's history with
// the candidate weights. A candidate is adopted only if it strictly lowers
// the replayed loss and validates as non-degenerate, so the returned vector
// never fits the history worse than the current one.
func OptimizeParameters(
	history []domain.ReviewLogEntry,
	current *Parameters,
) (*OptimizationResult, error) {
	if current == nil {
		current = DefaultParameters()
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}

	retention, rmse, logLoss := fitMetrics(history)

	result := &OptimizationResult{
		Parameters:    current.Clone(),
		RetentionRate: retention,
		RMSE:          rmse,
		LogLoss:       logLoss,
		ReviewCount:   len(history),
	}

	if len(history) < MinReviewsForOptimization {
		deficit := MinReviewsForOptimization - len(history)
		result.Message = fmt.Sprintf(
			"not enough review history to fit parameters: need %d more reviews", deficit)
		return result, nil
	}

	byCard := groupByCard(history)

	baseLoss := replayLogLoss(byCard, current)
	best := current.Clone()
	bestLoss := baseLoss

	for sweep := 0; sweep < descentSweeps; sweep++ {
		improvedInSweep := false

		for i := 0; i < WeightCount; i++ {
			step := math.Max(math.Abs(best.Weights[i])*0.05, 0.01)

			for _, delta := range [2]float64{-step, step} {
				candidate := best.Clone()
				candidate.Weights[i] += delta
				if candidate.Validate() != nil {
					continue
				}

				loss := replayLogLoss(byCard, candidate)
				if loss < bestLoss-lossImprovementTolerance {
					best = candidate
					bestLoss = loss
					improvedInSweep = true
				}
			}
		}

		if !improvedInSweep {
			break
		}
	}

	result.Optimized = true
	result.Parameters = best
	if bestLoss < baseLoss-lossImprovementTolerance {
		result.Message = fmt.Sprintf(
			"fitted parameters over %d reviews: replay log-loss %.4f -> %.4f",
			len(history), baseLoss, bestLoss)
	} else {
		result.Message = fmt.Sprintf(
			"current parameters already fit the %d recorded reviews; keeping them",
			len(history))
	}

	return result, nil
}

// fitMetrics computes log-loss, RMSE and the raw retention rate over the
// entries that carry a usable pre-review snapshot (positive stability,
// non-negative elapsed time). Predictions use the logged snapshot, so these
// metrics describe how well the scheduler's past predictions matched what
// actually happened.
func fitMetrics(history []domain.ReviewLogEntry) (retention, rmse, logLoss float64) {
	var (
		lossSum   float64
		sqSum     float64
		passed    int
		qualified int
	)

	for _, entry := range history {
		if entry.StabilityBefore <= 0 || entry.ElapsedDays < 0 {
			continue
		}
		qualified++

		p := clampProbability(Retrievability(entry.StabilityBefore, entry.ElapsedDays))
		y := 0.0
		if entry.Succeeded() {
			y = 1.0
			passed++
		}

		lossSum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		sqSum += (p - y) * (p - y)
	}

	if qualified == 0 {
		return 0, 0, 0
	}

	n := float64(qualified)
	return float64(passed) / n, math.Sqrt(sqSum / n), lossSum / n
}

// replayLogLoss replays every card's chronological history through the
// state machine with the given parameters and scores the retrievability
// predictions that the candidate weights would have made.
func replayLogLoss(byCard map[uuid.UUID][]domain.ReviewLogEntry, params *Parameters) float64 {
	var (
		sum float64
		n   int
	)

	w := &params.Weights

	for _, entries := range byCard {
		var stability, difficulty float64
		state := domain.LearningStateNew

		for _, entry := range entries {
			if state != domain.LearningStateNew && stability > 0 && entry.ElapsedDays >= 0 {
				p := clampProbability(Retrievability(stability, entry.ElapsedDays))
				y := 0.0
				if entry.Succeeded() {
					y = 1.0
				}
				sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
				n++
			}

			stability, difficulty, state = replayStep(w, stability, difficulty, state, entry)
		}
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// replayStep mirrors the scheduler's state transitions, driven by the
// logged rating and elapsed time instead of wall-clock timestamps.
func replayStep(
	w *[WeightCount]float64,
	stability, difficulty float64,
	state domain.LearningState,
	entry domain.ReviewLogEntry,
) (float64, float64, domain.LearningState) {
	switch state {
	case domain.LearningStateNew:
		stability = initialStability(w, entry.Rating)
		difficulty = initialDifficulty(w, entry.Rating)
		if entry.Rating == domain.RatingAgain {
			state = domain.LearningStateLearning
		} else {
			state = domain.LearningStateReview
		}

	case domain.LearningStateLearning, domain.LearningStateRelearning:
		difficulty = nextDifficulty(w, difficulty, entry.Rating)
		if entry.Rating != domain.RatingAgain {
			stability = stabilityShortTerm(w, stability, entry.Rating)
			state = domain.LearningStateReview
		}

	case domain.LearningStateReview:
		r := Retrievability(stability, entry.ElapsedDays)
		if entry.Rating == domain.RatingAgain {
			stability = stabilityAfterLapse(w, difficulty, stability, r)
			state = domain.LearningStateRelearning
		} else {
			stability = stabilityAfterRecall(w, difficulty, stability, r, entry.Rating)
		}
		difficulty = nextDifficulty(w, difficulty, entry.Rating)
	}

	return stability, difficulty, state
}

// groupByCard splits the history per card, each slice ordered by review
// time so replays see each card's reviews in the order they happened.
func groupByCard(history []domain.ReviewLogEntry) map[uuid.UUID][]domain.ReviewLogEntry {
	byCard := make(map[uuid.UUID][]domain.ReviewLogEntry)
	for _, entry := range history {
		byCard[entry.CardID] = append(byCard[entry.CardID], entry)
	}

	for _, entries := range byCard {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].ReviewedAt.Before(entries[j].ReviewedAt)
		})
	}

	return byCard
}

func clampProbability(p float64) float64 {
	return math.Max(probabilityEpsilon, math.Min(1-probabilityEpsilon, p))
}
