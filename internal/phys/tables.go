package phys

import "math"

// FormationCurve gives the probability that a star of a spectral class hosts
// a giant planet, as a function of metallicity.
//
// The probability scales as Base·10^(Slope·[Fe/H]).
type FormationCurve struct {
	Base  float64
	Slope float64
}

// PlanetFormationCurves is keyed by spectral class letter. "D" is the white
// dwarf remnant class.
var PlanetFormationCurves = map[string]FormationCurve{
	"O": {Base: 0.001, Slope: 1.0},
	"B": {Base: 0.01, Slope: 1.2},
	"A": {Base: 0.11, Slope: 1.2},
	"F": {Base: 0.10, Slope: 1.8},
	"G": {Base: 0.07, Slope: 2.0},
	"K": {Base: 0.05, Slope: 2.0},
	"M": {Base: 0.03, Slope: 1.8},
	"D": {Base: 0.01, Slope: 1.0},
}

// HostProbability returns the giant-planet host probability for a spectral
// class and bulk metallicity Z. Unknown classes return 0.
func HostProbability(class string, metallicity float64) float64 {
	curve, ok := PlanetFormationCurves[class]
	if !ok || metallicity <= 0 {
		return 0
	}
	feH := math.Log10(metallicity / SolarMetallicity)
	p := curve.Base * math.Pow(10, curve.Slope*feH)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// MolarWeights holds atmospheric gas molar masses in g/mol.
var MolarWeights = map[string]float64{
	"H2":  2.016,
	"He":  4.0026,
	"CH4": 16.04,
	"NH3": 17.031,
	"H2O": 18.015,
	"N2":  28.014,
	"O2":  31.998,
	"Ar":  39.948,
	"CO2": 44.009,
	"SO2": 64.066,
}
