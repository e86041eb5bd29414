// Package scale maps physical quantities onto display units. Real systems
// span too many orders of magnitude to draw linearly.
package scale

import (
	"math"

	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
)

// Display ranges in scene units.
const (
	MinBodyRadius = 0.5
	MaxBodyRadius = 12.0
	SceneRadius   = 500.0 // scene units at MaxDistanceAU
	MaxDistanceAU = 60.0
)

// Radius maps a physical radius in metres to a scene radius. The range runs
// from a small moon (100 km) to a large star (100 solar radii) on a log
// scale.
func Radius(meters float64) float64 {
	if meters <= 0 {
		return MinBodyRadius
	}
	return entropy.MapLogRange(meters, 1e5, 100*phys.SolarRadius, MinBodyRadius, MaxBodyRadius)
}

// Distance compresses an orbital distance in AU to scene units with a
// square root, so inner orbits stay readable next to outer ones.
func Distance(au float64) float64 {
	if au <= 0 {
		return 0
	}
	return SceneRadius * math.Sqrt(au/MaxDistanceAU)
}

// PeriodSpeed returns the phase advance in radians per simulated day for an
// orbital period in days.
func PeriodSpeed(periodDays float64) float64 {
	if periodDays <= 0 {
		return 0
	}
	return 2 * math.Pi / periodDays
}

// Mapper maps one value range onto another.
type Mapper func(v float64) float64

// Linear returns a clamped linear mapper.
func Linear(inMin, inMax, outMin, outMax float64) Mapper {
	return func(v float64) float64 {
		return entropy.MapRange(v, inMin, inMax, outMin, outMax)
	}
}

// Log returns a clamped logarithmic mapper. Inputs must be positive.
func Log(inMin, inMax, outMin, outMax float64) Mapper {
	return func(v float64) float64 {
		return entropy.MapLogRange(v, inMin, inMax, outMin, outMax)
	}
}
