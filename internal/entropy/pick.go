package entropy

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrProbabilitySum is returned when a probability vector does not sum to 1
// or does not line up with its items.
var ErrProbabilitySum = errors.New("probabilities must sum to 1")

// SumTolerance is the slack allowed when checking that probabilities sum to 1.
const SumTolerance = 1e-9

// PickWithProbability draws one of items, item i with probability probs[i].
//
// Floating-point rounding can leave the cumulative sum just short of the
// roll; in that case the last item with non-zero probability is returned.
func PickWithProbability[T any](rng *rand.Rand, items []T, probs []float64) (T, error) {
	var zero T
	if len(items) == 0 || len(items) != len(probs) {
		return zero, fmt.Errorf("%w: %d items, %d probabilities", ErrProbabilitySum, len(items), len(probs))
	}
	sum := 0.0
	for _, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return zero, fmt.Errorf("%w: negative or NaN probability %v", ErrProbabilitySum, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > SumTolerance {
		return zero, fmt.Errorf("%w: got %v", ErrProbabilitySum, sum)
	}

	return items[pickIndex(probs, rng.Float64())], nil
}

// pickIndex walks the cumulative distribution for roll.
func pickIndex(probs []float64, roll float64) int {
	cumulative := 0.0
	last := 0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		cumulative += p
		if roll < cumulative {
			return i
		}
	}
	return last
}

// Normalize scales non-negative weights so they sum to 1.
func Normalize(weights []float64) ([]float64, error) {
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return nil, errors.New("weights sum to zero")
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out, nil
}
