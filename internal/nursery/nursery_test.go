package nursery

import (
	"math"
	"testing"

	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
)

func sum(ps []float64) float64 {
	s := 0.0
	for _, p := range ps {
		s += p
	}
	return s
}

func TestBandProbabilities_Normalised(t *testing.T) {
	tests := []struct {
		name    string
		metal   float64
		density float64
	}{
		{"solar baseline", phys.SolarMetallicity, BaselineDensity},
		{"dense cloud", phys.SolarMetallicity, 1e5},
		{"diffuse cloud", phys.SolarMetallicity, 10},
		{"metal rich", 0.04, BaselineDensity},
		{"metal poor", 0.001, BaselineDensity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := New(tt.metal, tt.density).BandProbabilities()
			if len(probs) != len(MassBands) {
				t.Fatalf("got %d probabilities", len(probs))
			}
			if math.Abs(sum(probs)-1) > 1e-12 {
				t.Errorf("probabilities sum to %v", sum(probs))
			}
			for i, p := range probs {
				if p < 0 {
					t.Errorf("band %d negative probability %v", i, p)
				}
			}
			// Low-mass stars dominate any IMF.
			if probs[0] < probs[len(probs)-1] {
				t.Errorf("low band %v should outweigh very massive %v", probs[0], probs[len(probs)-1])
			}
		})
	}
}

func TestBandProbabilities_Environment(t *testing.T) {
	base := New(phys.SolarMetallicity, BaselineDensity).BandProbabilities()
	dense := New(phys.SolarMetallicity, 1e5).BandProbabilities()
	rich := New(3*phys.SolarMetallicity, BaselineDensity).BandProbabilities()

	if dense[2] <= base[2] || dense[3] <= base[3] {
		t.Errorf("denser cloud should favour massive bands: base=%v dense=%v", base, dense)
	}
	if rich[2] >= base[2] || rich[3] >= base[3] {
		t.Errorf("higher metallicity should suppress massive bands: base=%v rich=%v", base, rich)
	}

	for i := 1; i < len(MassBands); i++ {
		if dense[i]-base[i] <= dense[i-1]-base[i-1] {
			t.Errorf("density shift of %s (%g) not above %s (%g)",
				MassBands[i].Name, dense[i]-base[i], MassBands[i-1].Name, dense[i-1]-base[i-1])
		}
	}
}

func TestBandProbabilities_Extremes(t *testing.T) {
	const richest = 0.04 // upper clamp of the sampled metallicity
	tests := []struct {
		name        string
		density     float64
		metallicity float64
		positive    int // leading bands left above zero; the rest clamp
	}{
		{"dense and metal rich", MaxCloudDensity, richest, 4},
		{"sparse and metal rich", MinCloudDensity, richest, 2},
		{"dense and metal poor", MaxCloudDensity, phys.SolarMetallicity / 10, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.metallicity, tt.density)
			probs := n.BandProbabilities()
			if total := sum(probs); math.Abs(total-1) > 1e-9 {
				t.Errorf("probabilities sum to %g", total)
			}
			if probs[0] <= 0.5 {
				t.Errorf("low band = %g, want it to stay dominant", probs[0])
			}
			for i, p := range probs {
				if i < tt.positive && p <= 0 {
					t.Errorf("band %s = %g, want positive", MassBands[i].Name, p)
				}
				if i >= tt.positive && p != 0 {
					t.Errorf("band %s = %g, want clamped to 0", MassBands[i].Name, p)
				}
			}

			if tt.positive == len(MassBands) {
				return
			}
			ceiling := MassBands[tt.positive].Min
			rng := entropy.NewRand(23)
			for i := 0; i < 2000; i++ {
				if m := n.SampleStarMass(rng); m >= ceiling {
					t.Fatalf("sampled %g M☉ from a clamped band", m)
				}
			}
		})
	}
}

func TestPickBand_FallthroughClamps(t *testing.T) {
	probs := []float64{0.5, 0.3, 0.1, 0.0999999}
	if got := pickBand(probs, 0.99999999); got != len(probs)-1 {
		t.Errorf("fallthrough picked band %d, want last", got)
	}
	if got := pickBand(probs, 0.1); got != 0 {
		t.Errorf("pickBand(0.1) = %d, want 0", got)
	}
	clamped := []float64{0.7, 0.2999999, 0, 0}
	if got := pickBand(clamped, 0.99999999); got != 1 {
		t.Errorf("fallthrough picked band %d, want 1 (last non-zero)", got)
	}
}

func TestSampleStarMass_NeverZero(t *testing.T) {
	rng := entropy.NewRand(17)
	n := New(phys.SolarMetallicity, 5000)
	for i := 0; i < 10000; i++ {
		m := n.SampleStarMass(rng)
		if m < MassBands[0].Min || m >= MassBands[len(MassBands)-1].Max {
			t.Fatalf("star mass %v outside IMF range", m)
		}
	}
}

func TestForm_Budget(t *testing.T) {
	rng := entropy.NewRand(99)
	n := New(phys.SolarMetallicity, BaselineDensity)
	for i := 0; i < 1000; i++ {
		r := n.Form(rng)
		if r.DiskMass < 0.2*r.StarMass || r.DiskMass > 0.6*r.StarMass {
			t.Fatalf("disk mass %v outside [0.2, 0.6]×%v", r.DiskMass, r.StarMass)
		}
		if r.PlanetMassEarths() != r.PlanetMass*phys.SolarMass/phys.EarthMass {
			t.Fatal("PlanetMassEarths conversion mismatch")
		}
	}
}

func TestDensityField(t *testing.T) {
	f := NewDensityField(42)
	g := NewDensityField(42)
	for _, pt := range [][2]float64{{0, 0}, {120, -40}, {-900, 333}} {
		d := f.At(pt[0], pt[1])
		if d < MinCloudDensity || d > MaxCloudDensity {
			t.Errorf("density %v at %v outside bounds", d, pt)
		}
		if d != g.At(pt[0], pt[1]) {
			t.Error("same seed should give same field")
		}
	}
	n := f.NurseryAt(10, 10, phys.SolarMetallicity)
	if n.CloudDensity != f.At(10, 10) || n.Alpha != SalpeterAlpha {
		t.Errorf("unexpected nursery %+v", n)
	}
}
