package body

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/planetgen/internal/entropy"
)

// MassRange is a half-open interval [Min, Max) in Earth masses.
type MassRange struct {
	Min float64
	Max float64
}

// Contains reports whether m lies in the range.
func (r MassRange) Contains(m float64) bool {
	return m >= r.Min && m < r.Max
}

// Sample draws a mass uniformly from the range.
func (r MassRange) Sample(rng *rand.Rand) float64 {
	return entropy.Uniform(rng, r.Min, r.Max)
}

// KindSpec is the per-kind strategy: the mass range used for classification
// and sampling, the radius estimator and surface properties.
type KindSpec struct {
	Kind           Kind
	MassRange      MassRange
	AlbedoRange    [2]float64
	EstimateRadius func(rng *rand.Rand, earthMass float64) float64
	Atmosphere     func() *Atmosphere
}

// Kinds maps each planet kind to its strategy. Mass ranges ascend and do not
// overlap.
var Kinds = map[Kind]KindSpec{
	KindSubTerran: {
		Kind:           KindSubTerran,
		MassRange:      MassRange{1e-5, 0.1},
		AlbedoRange:    [2]float64{0.07, 0.25},
		EstimateRadius: EstimateRadius,
		Atmosphere:     func() *Atmosphere { return nil },
	},
	KindTerran: {
		Kind:           KindTerran,
		MassRange:      MassRange{0.1, 2},
		AlbedoRange:    [2]float64{0.1, 0.4},
		EstimateRadius: EstimateRadius,
		Atmosphere:     TerranAtmosphere,
	},
	KindSuperTerran: {
		Kind:           KindSuperTerran,
		MassRange:      MassRange{2, 10},
		AlbedoRange:    [2]float64{0.1, 0.45},
		EstimateRadius: EstimateRadius,
		Atmosphere:     SuperTerranAtmosphere,
	},
	KindMiniNeptunian: {
		Kind:           KindMiniNeptunian,
		MassRange:      MassRange{10, 20},
		AlbedoRange:    [2]float64{0.25, 0.4},
		EstimateRadius: EstimateRadius,
		Atmosphere:     IceGiantAtmosphere,
	},
	KindIceGiant: {
		Kind:           KindIceGiant,
		MassRange:      MassRange{20, 80},
		AlbedoRange:    [2]float64{0.25, 0.35},
		EstimateRadius: EstimateRadius,
		Atmosphere:     IceGiantAtmosphere,
	},
	KindGasGiant: {
		Kind:           KindGasGiant,
		MassRange:      MassRange{80, 4000},
		AlbedoRange:    [2]float64{0.3, 0.55},
		EstimateRadius: EstimateRadius,
		Atmosphere:     GasGiantAtmosphere,
	},
}

// PlanetKinds lists the planet kinds in ascending mass order.
func PlanetKinds() []Kind {
	return []Kind{KindSubTerran, KindTerran, KindSuperTerran, KindMiniNeptunian, KindIceGiant, KindGasGiant}
}

// RockyKinds lists the kinds allowed inside the frost line.
func RockyKinds() []Kind {
	return []Kind{KindSubTerran, KindTerran, KindSuperTerran}
}

// KindForMass returns the planet kind whose mass range contains earthMass.
func KindForMass(earthMass float64) (Kind, error) {
	for _, k := range PlanetKinds() {
		if Kinds[k].MassRange.Contains(earthMass) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: no planet kind for %g Earth masses", ErrInvalidInput, earthMass)
}

// powerLaw is one segment of the mass–radius fit R = C·M^S.
type powerLaw struct {
	upTo       float64 // segment applies below this mass
	coef, exp  float64
	coefJitter float64 // relative
	expJitter  float64 // absolute
}

// Three-segment mass–radius fit in Earth units.
var radiusSegments = []powerLaw{
	{upTo: 4.37, coef: 1.008, exp: 0.279, coefJitter: 0.05, expJitter: 0.01},
	{upTo: 127, coef: 0.638, exp: 0.589, coefJitter: 0.05, expJitter: 0.01},
	{upTo: math.Inf(1), coef: 13.7, exp: -0.044, coefJitter: 0.05, expJitter: 0.01},
}

// EstimateRadius returns a radius in Earth radii for earthMass. The
// coefficient and exponent of the applicable segment are jittered
// independently, so repeated calls yield a spread of plausible radii.
func EstimateRadius(rng *rand.Rand, earthMass float64) float64 {
	seg := radiusSegments[len(radiusSegments)-1]
	for _, s := range radiusSegments {
		if earthMass < s.upTo {
			seg = s
			break
		}
	}
	coef := seg.coef * (1 + entropy.Uniform(rng, -seg.coefJitter, seg.coefJitter))
	exp := seg.exp + entropy.Uniform(rng, -seg.expJitter, seg.expJitter)
	return coef * math.Pow(earthMass, exp)
}

// RadiusBounds returns the smallest and largest radius EstimateRadius can
// produce for earthMass.
func RadiusBounds(earthMass float64) (lo, hi float64) {
	seg := radiusSegments[len(radiusSegments)-1]
	for _, s := range radiusSegments {
		if earthMass < s.upTo {
			seg = s
			break
		}
	}
	a := seg.coef * (1 - seg.coefJitter) * math.Pow(earthMass, seg.exp-seg.expJitter)
	b := seg.coef * (1 - seg.coefJitter) * math.Pow(earthMass, seg.exp+seg.expJitter)
	c := seg.coef * (1 + seg.coefJitter) * math.Pow(earthMass, seg.exp-seg.expJitter)
	d := seg.coef * (1 + seg.coefJitter) * math.Pow(earthMass, seg.exp+seg.expJitter)
	return math.Min(math.Min(a, b), math.Min(c, d)), math.Max(math.Max(a, b), math.Max(c, d))
}
