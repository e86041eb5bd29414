package entropy

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MapRange linearly maps v from [inMin, inMax] to [outMin, outMax], clamping
// v to the input range first.
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	v = Clamp(v, math.Min(inMin, inMax), math.Max(inMin, inMax))
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

// MapLogRange maps v logarithmically from [inMin, inMax] onto
// [outMin, outMax]. Input bounds must be positive.
func MapLogRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMin <= 0 || inMax <= 0 {
		return outMin
	}
	if v <= 0 {
		v = inMin
	}
	return MapRange(math.Log(v), math.Log(inMin), math.Log(inMax), outMin, outMax)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// IntRange returns [start, end) as a slice. An empty slice when end <= start.
func IntRange[T constraints.Integer](start, end T) []T {
	if end <= start {
		return []T{}
	}
	out := make([]T, 0, int(end-start))
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
