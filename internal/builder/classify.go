package builder

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/entropy"
)

// Classify picks a planet kind for a slot. Inside the frost line only rocky
// kinds are candidates. Kinds whose minimum mass exceeds the remaining
// budget are dropped and the rest renormalised. ok is false when nothing
// fits; err is set only when the configured probabilities are malformed.
func (b *Builder) Classify(rng *rand.Rand, distance, frostLine, budget float64) (kind body.Kind, ok bool, err error) {
	kinds, probs := body.PlanetKinds(), b.cfg.OuterProbabilities
	if distance < frostLine {
		kinds, probs = body.RockyKinds(), b.cfg.InnerProbabilities
	}
	if len(kinds) != len(probs) {
		return 0, false, fmt.Errorf("%w: %d kinds, %d probabilities", entropy.ErrProbabilitySum, len(kinds), len(probs))
	}
	if err := checkSum(probs); err != nil {
		return 0, false, err
	}

	var eligible []body.Kind
	var weights []float64
	for i, k := range kinds {
		if probs[i] > 0 && body.Kinds[k].MassRange.Min <= budget {
			eligible = append(eligible, k)
			weights = append(weights, probs[i])
		}
	}
	return pick(rng, eligible, weights)
}

// ClassifyMoon picks a moon kind for the mass still available around a
// host. Only kinds whose whole mass range lies below available qualify, and
// each larger kind is half as likely as the one before it.
func (b *Builder) ClassifyMoon(rng *rand.Rand, available float64) (kind body.Kind, ok bool, err error) {
	var eligible []body.Kind
	var weights []float64
	for i, k := range body.PlanetKinds() {
		if body.Kinds[k].MassRange.Max < available {
			eligible = append(eligible, k)
			weights = append(weights, math.Pow(0.5, float64(i)))
		}
	}
	return pick(rng, eligible, weights)
}

func pick(rng *rand.Rand, kinds []body.Kind, weights []float64) (body.Kind, bool, error) {
	if len(kinds) == 0 {
		return 0, false, nil
	}
	probs, err := entropy.Normalize(weights)
	if err != nil {
		return 0, false, nil
	}
	k, err := entropy.PickWithProbability(rng, kinds, probs)
	if err != nil {
		return 0, false, err
	}
	return k, true, nil
}
