package entropy

import (
	"math"
	"math/rand"
)

// Uniform returns a float in [min, max).
func Uniform(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

// UniformInt returns an int in [min, max], both inclusive.
func UniformInt(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// Normal draws from N(mean, std²).
func Normal(rng *rand.Rand, mean, std float64) float64 {
	return mean + rng.NormFloat64()*std
}

// ClampedNormal draws from N(mean, std²) and clamps the result to [lo, hi].
func ClampedNormal(rng *rand.Rand, mean, std, lo, hi float64) float64 {
	return Clamp(Normal(rng, mean, std), lo, hi)
}

// SkewNormal draws from a skew-normal distribution with location loc, scale
// and shape alpha. alpha = 0 reduces to Normal(loc, scale).
func SkewNormal(rng *rand.Rand, loc, scale, alpha float64) float64 {
	delta := alpha / math.Sqrt(1+alpha*alpha)
	u0 := rng.NormFloat64()
	v := rng.NormFloat64()
	u1 := delta*u0 + math.Sqrt(1-delta*delta)*v
	if u0 < 0 {
		u1 = -u1
	}
	return loc + scale*u1
}

// Bernoulli returns true with probability p.
func Bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// SampleIndices returns n distinct indices from [0, size) without
// replacement. n is clamped to size.
func SampleIndices(rng *rand.Rand, size, n int) []int {
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}
	perm := rng.Perm(size)
	return perm[:n]
}
