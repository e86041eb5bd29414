package body

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
)

// Zone names a habitable-zone boundary model.
type Zone string

const (
	ZoneRecentVenus       Zone = "recent_venus"
	ZoneRunawayGreenhouse Zone = "runaway_greenhouse"
	ZoneMoistGreenhouse   Zone = "moist_greenhouse"
	ZoneMaximumGreenhouse Zone = "maximum_greenhouse"
	ZoneEarlyMars         Zone = "early_mars"
)

// zoneModel is a flux polynomial S = S0 + a·ΔT + b·ΔT² + c·ΔT³ + d·ΔT⁴.
type zoneModel struct {
	Zone       Zone
	S0         float64
	A, B, C, D float64
}

// habitableZoneModels are ordered innermost to outermost.
var habitableZoneModels = []zoneModel{
	{ZoneRecentVenus, 1.7753, 1.4316e-4, 2.9875e-9, -7.5702e-12, -1.1635e-15},
	{ZoneRunawayGreenhouse, 1.0512, 1.3242e-4, 1.5418e-8, -7.9895e-12, -1.8328e-15},
	{ZoneMoistGreenhouse, 1.0140, 8.1774e-5, 1.7063e-9, -4.3241e-12, -6.6462e-16},
	{ZoneMaximumGreenhouse, 0.3438, 5.8942e-5, 1.6558e-9, -3.0045e-12, -5.2983e-16},
	{ZoneEarlyMars, 0.3179, 5.4513e-5, 1.5313e-9, -2.7786e-12, -4.8997e-16},
}

// Zones lists the boundary models innermost first.
func Zones() []Zone {
	out := make([]Zone, len(habitableZoneModels))
	for i, m := range habitableZoneModels {
		out[i] = m.Zone
	}
	return out
}

// StarData is the derived snapshot of a star, computed once at construction.
type StarData struct {
	SolarMass      float64          `json:"solar_mass"`
	SolarRadius    float64          `json:"solar_radius"`
	Luminosity     float64          `json:"luminosity"`      // L☉
	SurfaceTemp    float64          `json:"surface_temp"`    // K
	WavelengthPeak float64          `json:"wavelength_peak"` // nm
	HabitableZones map[Zone]float64 `json:"habitable_zones"` // AU
	FrostLine      float64          `json:"frost_line"`      // AU
	SilicateLine   float64          `json:"silicate_line"`   // AU
	SpectralType   string           `json:"spectral_type"`
}

// HabitableRange returns the conservative habitable zone, from the runaway
// greenhouse limit to the maximum greenhouse limit, in AU.
func (s *StarData) HabitableRange() (inner, outer float64, err error) {
	if s == nil || s.HabitableZones == nil {
		return 0, 0, fmt.Errorf("%w: habitable zones not computed", ErrUninitialized)
	}
	inner, okIn := s.HabitableZones[ZoneRunawayGreenhouse]
	outer, okOut := s.HabitableZones[ZoneMaximumGreenhouse]
	if !okIn || !okOut {
		return 0, 0, fmt.Errorf("%w: habitable zone boundaries missing", ErrUninitialized)
	}
	return inner, outer, nil
}

// InHabitableZone reports whether distance (AU) lies in the conservative zone.
func (s *StarData) InHabitableZone(distance float64) bool {
	inner, outer, err := s.HabitableRange()
	if err != nil {
		return false
	}
	return distance >= inner && distance <= outer
}

// NewStar builds a star body. Derived fields are computed in order: real
// mass and radius, Wien peak, habitable zones, frost and silicate lines.
// An empty name is replaced by a designation built from the spectral type.
func NewStar(kind Kind, name string, solarMass, solarRadius, luminosity, surfaceTemp float64, pos PolarCoordinate) (*Body, error) {
	if !kind.IsStar() {
		return nil, fmt.Errorf("%w: %s is not a star kind", ErrInvalidInput, kind)
	}
	if solarMass <= 0 || solarRadius <= 0 || luminosity <= 0 || surfaceTemp <= 0 {
		return nil, fmt.Errorf("%w: star requires positive mass, radius, luminosity and temperature (got %g, %g, %g, %g)",
			ErrInvalidInput, solarMass, solarRadius, luminosity, surfaceTemp)
	}

	data := &StarData{
		SolarMass:   solarMass,
		SolarRadius: solarRadius,
		Luminosity:  luminosity,
		SurfaceTemp: surfaceTemp,
	}
	data.WavelengthPeak = WienPeak(surfaceTemp)
	data.HabitableZones = make(map[Zone]float64, len(habitableZoneModels))
	for _, m := range habitableZoneModels {
		data.HabitableZones[m.Zone] = HabitableZoneDistance(m.Zone, luminosity, surfaceTemp)
	}
	data.FrostLine = BlackBodyDistance(luminosity, phys.FrostTemp)
	data.SilicateLine = BlackBodyDistance(luminosity, phys.SilicateTemp)
	data.SpectralType = SpectralType(kind, surfaceTemp)

	if name == "" {
		name = fmt.Sprintf("%s-%05d", data.SpectralType, int(solarMass*1e4))
	}

	return &Body{
		ID:       NoBody,
		Name:     name,
		Kind:     kind,
		Position: pos,
		Mass:     solarMass * phys.SolarMass,
		Radius:   solarRadius * phys.SolarRadius,
		Parent:   NoBody,
		Star:     data,
	}, nil
}

// WienPeak returns the black-body emission peak in nm.
func WienPeak(tempK float64) float64 {
	return phys.WienB / tempK * 1e9
}

// HabitableZoneDistance evaluates one boundary model for a star of the given
// luminosity (L☉) and surface temperature, returning AU.
func HabitableZoneDistance(zone Zone, luminosity, surfaceTemp float64) float64 {
	for _, m := range habitableZoneModels {
		if m.Zone != zone {
			continue
		}
		dt := surfaceTemp - phys.HabitableFluxReference
		s := m.S0 + m.A*dt + m.B*dt*dt + m.C*dt*dt*dt + m.D*dt*dt*dt*dt
		if s <= 0 {
			return math.Inf(1)
		}
		return math.Sqrt(luminosity / s)
	}
	return math.NaN()
}

// BlackBodyDistance returns the distance in AU at which a black body around a
// star of luminosity L☉ reaches equilibrium temperature tempK.
func BlackBodyDistance(luminosity, tempK float64) float64 {
	t4 := tempK * tempK * tempK * tempK
	return math.Sqrt(luminosity*phys.SolarLuminosity/(16*math.Pi*phys.StefanBoltzmann*t4)) / phys.AU
}

// MassToLuminosity estimates main-sequence luminosity (L☉) from mass (M☉).
func MassToLuminosity(solarMass float64) float64 {
	switch {
	case solarMass < 0.43:
		return 0.23 * math.Pow(solarMass, 2.3)
	case solarMass < 2:
		return math.Pow(solarMass, 4)
	case solarMass < 55:
		return 1.4 * math.Pow(solarMass, 3.5)
	default:
		return 32000 * solarMass
	}
}

// MainSequenceRadius estimates radius (R☉) from mass (M☉).
func MainSequenceRadius(solarMass float64) float64 {
	if solarMass < 1 {
		return math.Pow(solarMass, 0.8)
	}
	return math.Pow(solarMass, 0.57)
}

// EffectiveTemperature returns the photospheric temperature for a luminosity
// (L☉) and radius (R☉).
func EffectiveTemperature(luminosity, solarRadius float64) float64 {
	return phys.SolarTemp * math.Pow(luminosity/(solarRadius*solarRadius), 0.25)
}

// SpectralClass describes one main-sequence class: the mass range the
// generator samples from, its temperature band and catalogue prefix.
type SpectralClass struct {
	Class            string
	MassMin, MassMax float64 // M☉
	TempMin, TempMax float64 // K
	Prefix           string
}

// SpectralClasses is ordered hottest first.
var SpectralClasses = []SpectralClass{
	{"O", 16, 150, 30000, 50000, "HIP"},
	{"B", 2.1, 16, 10000, 30000, "HIP"},
	{"A", 1.4, 2.1, 7500, 10000, "HD"},
	{"F", 1.04, 1.4, 6000, 7500, "HD"},
	{"G", 0.8, 1.04, 5200, 6000, "HD"},
	{"K", 0.45, 0.8, 3700, 5200, "GJ"},
	{"M", 0.08, 0.45, 2400, 3700, "LHS"},
}

// WhiteDwarfClass is the remnant variant.
var WhiteDwarfClass = SpectralClass{"D", 0.17, 1.33, 4000, 40000, "WD"}

// SpectralClassForMass returns the main-sequence class whose mass range
// contains solarMass, clamping to the extremes.
func SpectralClassForMass(solarMass float64) SpectralClass {
	for _, c := range SpectralClasses {
		if solarMass >= c.MassMin && solarMass < c.MassMax {
			return c
		}
	}
	if solarMass >= SpectralClasses[0].MassMin {
		return SpectralClasses[0]
	}
	return SpectralClasses[len(SpectralClasses)-1]
}

// SpectralType returns a Morgan–Keenan style tag, e.g. "G2V" or "DA5".
func SpectralType(kind Kind, surfaceTemp float64) string {
	if kind == KindWhiteDwarf {
		sub := entropy.Clamp(int(50400/surfaceTemp), 0, 9)
		return fmt.Sprintf("DA%d", sub)
	}
	for _, c := range SpectralClasses {
		if surfaceTemp >= c.TempMin {
			frac := (c.TempMax - surfaceTemp) / (c.TempMax - c.TempMin)
			sub := entropy.Clamp(int(frac*10), 0, 9)
			return fmt.Sprintf("%s%dV", c.Class, sub)
		}
	}
	return "M9V"
}

// SpectralLetter extracts the class letter from a spectral type tag.
func SpectralLetter(spectralType string) string {
	if spectralType == "" {
		return ""
	}
	return spectralType[:1]
}

// GenMainSequence builds a main-sequence star of the given mass using the
// mass–radius and mass–luminosity estimators.
func GenMainSequence(name string, solarMass float64, pos PolarCoordinate) (*Body, error) {
	radius := MainSequenceRadius(solarMass)
	lum := MassToLuminosity(solarMass)
	temp := EffectiveTemperature(lum, radius)
	return NewStar(KindStar, name, solarMass, radius, lum, temp, pos)
}

// GenWhiteDwarf samples a cooling white dwarf.
func GenWhiteDwarf(rng *rand.Rand, name string, pos PolarCoordinate) (*Body, error) {
	mass := entropy.Uniform(rng, WhiteDwarfClass.MassMin, WhiteDwarfClass.MassMax)
	radius := entropy.Clamp(0.0126*math.Pow(mass, -1.0/3.0), 0.008, 0.02)
	temp := entropy.Uniform(rng, WhiteDwarfClass.TempMin, WhiteDwarfClass.TempMax)
	lum := radius * radius * math.Pow(temp/phys.SolarTemp, 4)
	return NewStar(KindWhiteDwarf, name, mass, radius, lum, temp, pos)
}
