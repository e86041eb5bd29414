package nursery

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/planetgen/internal/entropy"
)

// Density field bounds in particles per cm³.
const (
	MinCloudDensity = 10.0
	MaxCloudDensity = 1e5
)

// DensityField is a smooth molecular-cloud density map over galactic
// coordinates, built from layered simplex noise.
type DensityField struct {
	noise     opensimplex.Noise
	Frequency float64
	Octaves   int
}

// NewDensityField creates a field for seed.
func NewDensityField(seed int64) *DensityField {
	return &DensityField{
		noise:     opensimplex.NewNormalized(seed),
		Frequency: 0.01,
		Octaves:   4,
	}
}

// At returns the cloud density at (x, y), log-distributed between
// MinCloudDensity and MaxCloudDensity.
func (f *DensityField) At(x, y float64) float64 {
	v := octaveNoise(f.noise, x, y, f.Octaves, f.Frequency, 0.5)
	logMin, logMax := math.Log10(MinCloudDensity), math.Log10(MaxCloudDensity)
	return math.Pow(10, entropy.MapRange(v, 0, 1, logMin, logMax))
}

// NurseryAt builds a nursery at (x, y) with the given metallicity.
func (f *DensityField) NurseryAt(x, y, metallicity float64) *Nursery {
	return New(metallicity, f.At(x, y))
}

// octaveNoise layers multiple frequencies of normalized noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
