package fsrs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mnemoapp/mnemo-api/internal/domain"
)

// WeightCount is the length of the FSRS-5 weight vector.
const WeightCount = 19

// Algorithm constants of the forgetting curve. These are properties of the
// model, not per-user parameters, and are never fitted.
const (
	decayFactor = 0.5
	decayPower  = 0.5

	// minStability keeps the post-lapse formula from collapsing a card's
	// memory estimate to zero.
	minStability = 0.1

	// learningStepMinutes is the fixed short step used while a card is in
	// the learning or relearning state.
	learningStepMinutes = 10
)

// Common parameter errors.
var (
	// ErrDegenerateParameters is returned when a weight vector produces
	// non-finite stability or difficulty. A degenerate vector must never be
	// applied to live settings; callers keep the previous vector instead.
	ErrDegenerateParameters = errors.New("parameter vector yields non-finite results")

	// ErrInvalidRetention is returned when the requested retention is not a
	// probability strictly between 0 and 1.
	ErrInvalidRetention = errors.New("requested retention must be between 0 and 1")

	// ErrInvalidLeechThreshold is returned when the leech threshold is below 1.
	ErrInvalidLeechThreshold = errors.New("leech threshold must be at least 1")
)

// Parameters holds the full algorithm configuration for one user: the
// FSRS-5 weight vector plus the scalar scheduling settings. The weights are
// written only by the optimizer or an explicit settings change; the scheduler
// and due-set selector only read them.
type Parameters struct {
	Weights            [WeightCount]float64 `json:"weights"`
	RequestedRetention float64              `json:"requested_retention"` // target recall probability
	LeechThreshold     int                  `json:"leech_threshold"`
	AutoSuspendLeeches bool                 `json:"auto_suspend_leeches"`
	TestDayLockout     bool                 `json:"test_day_lockout"`
}

// DefaultParameters returns the stock FSRS-5 weight vector and default
// scheduling settings (90% requested retention, leech threshold 8).
func DefaultParameters() *Parameters {
	return &Parameters{
		Weights: [WeightCount]float64{
			0.40255, 1.18385, 3.173, 15.69105, 7.1949, 0.5345, 1.4604,
			0.0046, 1.54575, 0.1192, 1.01925, 1.9395, 0.11, 0.29605,
			2.2698, 0.2315, 2.9898, 0.51655, 0.6621,
		},
		RequestedRetention: 0.90,
		LeechThreshold:     8,
		AutoSuspendLeeches: false,
		TestDayLockout:     true,
	}
}

// DecodeParameters parses a JSON-encoded Parameters record. Unknown fields
// are rejected rather than silently accepted, and the decoded record is
// validated before being returned.
func DecodeParameters(data []byte) (*Parameters, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Parameters
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks the scalar settings and probes the weight vector against
// every formula of the algorithm. A vector that produces a non-finite
// stability or difficulty anywhere is rejected with ErrDegenerateParameters.
func (p *Parameters) Validate() error {
	if p.RequestedRetention <= 0 || p.RequestedRetention >= 1 {
		return ErrInvalidRetention
	}

	if p.LeechThreshold < 1 {
		return ErrInvalidLeechThreshold
	}

	for _, w := range p.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return ErrDegenerateParameters
		}
	}

	// Probe the formulas with every rating. Weight vectors can be finite
	// yet still blow up inside an exponential.
	for rating := domain.RatingAgain; rating <= domain.RatingEasy; rating++ {
		s := initialStability(&p.Weights, rating)
		d := initialDifficulty(&p.Weights, rating)
		if !isFinitePositive(s) || !isFinite(d) {
			return ErrDegenerateParameters
		}

		if !isFinite(nextDifficulty(&p.Weights, d, rating)) {
			return ErrDegenerateParameters
		}

		if rating == domain.RatingAgain {
			if !isFinitePositive(stabilityAfterLapse(&p.Weights, d, s, 0.9)) {
				return ErrDegenerateParameters
			}
		} else {
			if !isFinitePositive(stabilityAfterRecall(&p.Weights, d, s, 0.9, rating)) {
				return ErrDegenerateParameters
			}
			if !isFinitePositive(stabilityShortTerm(&p.Weights, s, rating)) {
				return ErrDegenerateParameters
			}
		}
	}

	return nil
}

// Clone returns a copy of the parameters.
func (p *Parameters) Clone() *Parameters {
	clone := *p
	return &clone
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFinitePositive(v float64) bool {
	return isFinite(v) && v > 0
}
