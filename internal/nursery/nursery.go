// Package nursery samples a star and its planet-forming mass budget from a
// molecular-cloud context.
package nursery

import (
	"math"
	"math/rand"

	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
)

// Defaults for the initial mass function and environment baselines.
const (
	SalpeterAlpha   = 2.35
	BaselineDensity = 100.0 // particles per cm³
)

// Band is a stellar mass interval [Min, Max) in solar masses.
type Band struct {
	Name     string
	Min, Max float64
	// Environment sensitivity: heavier bands respond more strongly.
	DensityCoef float64
	MetalCoef   float64
}

// MassBands are ordered lightest first. Coefficients sum to zero so an
// unclamped adjustment keeps the total at 1.
var MassBands = []Band{
	{Name: "low", Min: 0.08, Max: 0.5, DensityCoef: -0.018, MetalCoef: -0.009},
	{Name: "intermediate", Min: 0.5, Max: 2, DensityCoef: 0.004, MetalCoef: 0.002},
	{Name: "massive", Min: 2, Max: 8, DensityCoef: 0.006, MetalCoef: 0.003},
	{Name: "very_massive", Min: 8, Max: 150, DensityCoef: 0.008, MetalCoef: 0.004},
}

// Nursery is the ephemeral generator context. It is consumed once per system
// and not stored with it.
type Nursery struct {
	Metallicity         float64 // bulk Z
	CloudDensity        float64 // particles per cm³
	Alpha               float64
	BaselineMetallicity float64
	BaselineDensity     float64
}

// Result is what a nursery produces, in solar masses.
type Result struct {
	StarMass   float64 `json:"star_mass"`
	DiskMass   float64 `json:"disk_mass"`
	PlanetMass float64 `json:"planet_mass"`
}

// PlanetMassEarths returns the planet-forming budget in Earth masses.
func (r Result) PlanetMassEarths() float64 {
	return r.PlanetMass * phys.SolarMass / phys.EarthMass
}

// New returns a nursery with Salpeter slope and solar baselines.
func New(metallicity, cloudDensity float64) *Nursery {
	return &Nursery{
		Metallicity:         metallicity,
		CloudDensity:        cloudDensity,
		Alpha:               SalpeterAlpha,
		BaselineMetallicity: phys.SolarMetallicity,
		BaselineDensity:     BaselineDensity,
	}
}

// BandProbabilities returns the environment-adjusted probability of each
// mass band. Weights start from the power-law integral min^-α − max^-α,
// shift with log cloud density (denser favours heavier bands) and with
// relative metallicity (metal-rich clouds suppress heavier bands).
func (n *Nursery) BandProbabilities() []float64 {
	raw := make([]float64, len(MassBands))
	for i, b := range MassBands {
		raw[i] = math.Pow(b.Min, -n.Alpha) - math.Pow(b.Max, -n.Alpha)
	}
	probs, err := entropy.Normalize(raw)
	if err != nil {
		// Only reachable with a degenerate alpha; treat bands as equal.
		probs = equal(len(MassBands))
	}

	densityShift := 0.0
	if n.CloudDensity > 0 && n.BaselineDensity > 0 {
		densityShift = math.Log10(n.CloudDensity / n.BaselineDensity)
	}
	metalShift := 0.0
	if n.BaselineMetallicity > 0 {
		metalShift = n.Metallicity/n.BaselineMetallicity - 1
	}

	for i, b := range MassBands {
		probs[i] += b.DensityCoef*densityShift - b.MetalCoef*metalShift
		if probs[i] < 0 {
			probs[i] = 0
		}
	}

	adjusted, err := entropy.Normalize(probs)
	if err != nil {
		return equal(len(MassBands))
	}
	return adjusted
}

// SampleStarMass draws a band by cumulative roulette and a uniform mass
// inside it.
func (n *Nursery) SampleStarMass(rng *rand.Rand) float64 {
	band := MassBands[pickBand(n.BandProbabilities(), rng.Float64())]
	return entropy.Uniform(rng, band.Min, band.Max)
}

// pickBand returns the band index for roll. When rounding leaves the
// cumulative probability short of the roll, the last band with non-zero
// probability is used.
func pickBand(probs []float64, roll float64) int {
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

// DiskMass returns the protoplanetary disk mass for a star.
func DiskMass(rng *rand.Rand, starMass float64) float64 {
	return starMass * entropy.Uniform(rng, 0.2, 0.6)
}

// PlanetMassBudget applies a ~20% core-accretion efficiency. The draw is not
// clamped and can be zero or negative.
func PlanetMassBudget(rng *rand.Rand, diskMass float64) float64 {
	return diskMass * entropy.Normal(rng, 0.2, 0.05)
}

// Form runs the nursery once.
func (n *Nursery) Form(rng *rand.Rand) Result {
	star := n.SampleStarMass(rng)
	disk := DiskMass(rng, star)
	return Result{
		StarMass:   star,
		DiskMass:   disk,
		PlanetMass: PlanetMassBudget(rng, disk),
	}
}

func equal(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}
