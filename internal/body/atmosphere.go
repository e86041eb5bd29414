package body

import (
	"math"

	"github.com/talgya/planetgen/internal/phys"
)

// Atmosphere is a bulk composition by volume fraction.
type Atmosphere struct {
	Composition map[string]float64 `json:"composition"`
}

// MeanMolarMass returns the composition-weighted molar mass in g/mol. Gases
// missing from the molar weight table are ignored.
func (a *Atmosphere) MeanMolarMass() float64 {
	if a == nil {
		return 0
	}
	total, weight := 0.0, 0.0
	for gas, frac := range a.Composition {
		mw, ok := phys.MolarWeights[gas]
		if !ok {
			continue
		}
		total += frac
		weight += frac * mw
	}
	if total == 0 {
		return 0
	}
	return weight / total
}

// ScaleHeight returns the isothermal scale height H = RT/(μg) in km.
func (a *Atmosphere) ScaleHeight(tempK, gravity float64) float64 {
	mu := a.MeanMolarMass() / 1000 // kg/mol
	if mu == 0 || gravity <= 0 {
		return math.NaN()
	}
	return phys.GasConstant * tempK / (mu * gravity) / 1000
}

// TerranAtmosphere is an Earth-like nitrogen/oxygen mix.
func TerranAtmosphere() *Atmosphere {
	return &Atmosphere{Composition: map[string]float64{"N2": 0.78, "O2": 0.21, "Ar": 0.0093, "CO2": 0.0007}}
}

// SuperTerranAtmosphere is a thick, CO2-rich secondary atmosphere.
func SuperTerranAtmosphere() *Atmosphere {
	return &Atmosphere{Composition: map[string]float64{"CO2": 0.9, "N2": 0.07, "SO2": 0.0015, "H2O": 0.0285}}
}

// IceGiantAtmosphere is hydrogen/helium with methane.
func IceGiantAtmosphere() *Atmosphere {
	return &Atmosphere{Composition: map[string]float64{"H2": 0.8, "He": 0.18, "CH4": 0.02}}
}

// GasGiantAtmosphere is a solar-like hydrogen/helium envelope.
func GasGiantAtmosphere() *Atmosphere {
	return &Atmosphere{Composition: map[string]float64{"H2": 0.86, "He": 0.136, "CH4": 0.003, "NH3": 0.001}}
}
