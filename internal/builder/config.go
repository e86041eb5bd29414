package builder

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
)

// Generation tunables.
const (
	MaxOrbitalDistance   = 60.0 // AU
	FormationProbability = 0.5
	MoonHostMinMass      = 0.1 // Earth masses
	MaxMoons             = 4
	CrustSampleSize      = 5
	WhiteDwarfChance     = 0.03
	NameAttempts         = 8
)

// Normal describes a clamped normal draw.
type Normal struct {
	Mean, Std, Min, Max float64
}

// Sample draws from the distribution.
func (n Normal) Sample(rng *rand.Rand) float64 {
	return entropy.ClampedNormal(rng, n.Mean, n.Std, n.Min, n.Max)
}

// GenConfig holds system generation parameters.
type GenConfig struct {
	MaxOrbitalDistance   float64 // AU; slots beyond this end the loop
	MinPlanetMass        float64 // Earth masses; budget at or below ends the loop
	SlotBudget           Normal  // rounded to an integer slot count
	FormationProbability float64 // chance a slot forms a body

	SpacingD0 Normal // AU
	SpacingK  Normal

	// Probabilities over body.RockyKinds inside the frost line and over
	// body.PlanetKinds outside it. Each must sum to 1.
	InnerProbabilities []float64
	OuterProbabilities []float64

	MoonHostMinMass  float64 // Earth masses
	MoonMassFraction Normal  // of host mass
	MaxMoons         int
	MoonHillMin      float64 // stable fraction of the Hill sphere
	MoonHillMax      float64
	MoonSpacingD0    Normal // fraction of the stable radius

	CrustSampleSize  int
	WhiteDwarfChance float64
	Emissivity       [2]float64

	RadEfficRatios        []float64
	RadEfficProbabilities []float64

	PlanetRetrogradeChance float64
	MoonRetrogradeChance   float64

	// Nursery environment.
	Metallicity    Normal
	GalacticExtent float64 // nursery position drawn from [-extent, extent]²
}

// DefaultGenConfig returns the standard generation parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		MaxOrbitalDistance:   MaxOrbitalDistance,
		MinPlanetMass:        body.Kinds[body.KindSubTerran].MassRange.Min,
		SlotBudget:           Normal{Mean: 6, Std: 2, Min: 1, Max: 12},
		FormationProbability: FormationProbability,

		SpacingD0: Normal{Mean: 0.2, Std: 0.1, Min: 0.05, Max: 0.6},
		SpacingK:  Normal{Mean: 2.0, Std: 0.25, Min: 1.3, Max: 3.0},

		InnerProbabilities: []float64{0.25, 0.60, 0.15},
		OuterProbabilities: []float64{0.01, 0.05, 0.04, 0.16, 0.33, 0.41},

		MoonHostMinMass:  MoonHostMinMass,
		MoonMassFraction: Normal{Mean: 0.02, Std: 0.01, Min: 0.01, Max: 0.03},
		MaxMoons:         MaxMoons,
		MoonHillMin:      1.0 / 3.0,
		MoonHillMax:      0.5,
		MoonSpacingD0:    Normal{Mean: 0.08, Std: 0.03, Min: 0.02, Max: 0.15},

		CrustSampleSize:  CrustSampleSize,
		WhiteDwarfChance: WhiteDwarfChance,
		Emissivity:       [2]float64{0.85, 1.0},

		RadEfficRatios:        []float64{body.RadEfficFastRotator, body.RadEfficLocked, body.RadEfficSubstellar},
		RadEfficProbabilities: []float64{0.80, 0.15, 0.05},

		PlanetRetrogradeChance: 0.05,
		MoonRetrogradeChance:   0.15,

		Metallicity:    Normal{Mean: phys.SolarMetallicity, Std: 0.004, Min: 0.002, Max: 0.04},
		GalacticExtent: 5000,
	}
}

// SmallTestConfig returns parameters that yield small, quick systems.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.SlotBudget = Normal{Mean: 3, Std: 0, Min: 3, Max: 3}
	return cfg
}

// Validate checks that the probability vectors are well formed.
func (c GenConfig) Validate() error {
	checks := []struct {
		name  string
		probs []float64
		want  int
	}{
		{"inner", c.InnerProbabilities, len(body.RockyKinds())},
		{"outer", c.OuterProbabilities, len(body.PlanetKinds())},
		{"radiative efficiency", c.RadEfficProbabilities, len(c.RadEfficRatios)},
	}
	for _, chk := range checks {
		if len(chk.probs) != chk.want {
			return fmt.Errorf("%s probabilities: %w: got %d values for %d items",
				chk.name, entropy.ErrProbabilitySum, len(chk.probs), chk.want)
		}
		if err := checkSum(chk.probs); err != nil {
			return fmt.Errorf("%s probabilities: %w", chk.name, err)
		}
	}
	if c.MoonHillMin <= 0 || c.MoonHillMax < c.MoonHillMin || c.MoonHillMax > 1 {
		return fmt.Errorf("moon hill fraction [%g, %g] outside (0, 1]", c.MoonHillMin, c.MoonHillMax)
	}
	return nil
}

func checkSum(probs []float64) error {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	if math.Abs(total-1) > entropy.SumTolerance {
		return fmt.Errorf("%w: got %g", entropy.ErrProbabilitySum, total)
	}
	return nil
}
