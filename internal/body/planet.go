package body

import (
	"fmt"
	"math"

	"github.com/talgya/planetgen/internal/phys"
)

// Radiative efficiency ratios by rotation regime.
const (
	RadEfficFastRotator = 0.25 // Heat redistributed over the whole sphere
	RadEfficLocked      = 0.5  // Dayside-only redistribution
	RadEfficSubstellar  = 1.0  // No redistribution
)

// PlanetData is the derived snapshot of a planetary-mass body.
type PlanetData struct {
	EarthMass       float64 `json:"earth_mass"`
	EarthRadius     float64 `json:"earth_radius"`
	OrbitalDistance float64 `json:"orbital_distance"` // AU, mirrors Position.R at creation
	OrbitalPeriod   float64 `json:"orbital_period"`   // days
	Retrograde      bool    `json:"retrograde"`

	EffLumin      float64 `json:"eff_lumin"` // W/m² × 4π, incident
	EffTemp       float64 `json:"eff_temp"`  // K
	Albedo        float64 `json:"albedo"`
	Epsilon       float64 `json:"epsilon"`
	RadEfficRatio float64 `json:"rad_effic_ratio"`

	HillRadius     float64 `json:"hill_radius"`     // AU
	SurfaceGravity float64 `json:"surface_gravity"` // m/s²
	EscapeVelocity float64 `json:"escape_velocity"` // m/s

	Atmosphere *Atmosphere `json:"atmosphere,omitempty"`
	Crust      []string    `json:"crust,omitempty"`
	Habitable  bool        `json:"habitable"`
}

// PlanetParams are the sampled inputs of a planet. Parent is required; it is
// read for its mass and never stored.
type PlanetParams struct {
	Name          string
	EarthMass     float64
	EarthRadius   float64
	Parent        *Body
	Position      PolarCoordinate
	EffLumin      float64
	Albedo        float64
	Epsilon       float64
	RadEfficRatio float64
	Retrograde    bool
	Atmosphere    *Atmosphere
	Crust         []string
}

func validRadEffic(r float64) bool {
	return r == RadEfficFastRotator || r == RadEfficLocked || r == RadEfficSubstellar
}

// NewPlanet builds a planetary-mass body of kind from params, deriving the
// orbital period, escape velocity, surface gravity, black-body temperature
// and Hill radius.
func NewPlanet(kind Kind, p PlanetParams) (*Body, error) {
	if !kind.IsPlanet() {
		return nil, fmt.Errorf("%w: %s is not a planet kind", ErrInvalidInput, kind)
	}
	switch {
	case p.Parent == nil:
		return nil, fmt.Errorf("%w: planet %q needs a parent body", ErrInvalidInput, p.Name)
	case p.EarthMass <= 0 || p.EarthRadius <= 0:
		return nil, fmt.Errorf("%w: planet %q needs positive mass and radius", ErrInvalidInput, p.Name)
	case p.EffLumin < 0:
		return nil, fmt.Errorf("%w: negative incident flux %g", ErrInvalidInput, p.EffLumin)
	case p.Albedo < 0 || p.Albedo > 1:
		return nil, fmt.Errorf("%w: albedo %g outside [0,1]", ErrInvalidInput, p.Albedo)
	case p.Epsilon <= 0 || p.Epsilon > 1:
		return nil, fmt.Errorf("%w: emissivity %g outside (0,1]", ErrInvalidInput, p.Epsilon)
	case !validRadEffic(p.RadEfficRatio):
		return nil, fmt.Errorf("%w: radiative efficiency ratio %g", ErrInvalidInput, p.RadEfficRatio)
	}

	mass := p.EarthMass * phys.EarthMass
	radius := p.EarthRadius * phys.EarthRadius
	distance := p.Position.R

	hill, err := HillRadius(distance, mass, p.Parent.Mass)
	if err != nil {
		return nil, fmt.Errorf("planet %q: %w", p.Name, err)
	}

	data := &PlanetData{
		EarthMass:       p.EarthMass,
		EarthRadius:     p.EarthRadius,
		OrbitalDistance: distance,
		OrbitalPeriod:   OrbitalPeriod(distance, mass, p.Parent.Mass),
		Retrograde:      p.Retrograde,
		EffLumin:        p.EffLumin,
		Albedo:          p.Albedo,
		Epsilon:         p.Epsilon,
		RadEfficRatio:   p.RadEfficRatio,
		HillRadius:      hill,
		SurfaceGravity:  phys.G * mass / (radius * radius),
		EscapeVelocity:  math.Sqrt(2 * phys.G * mass / radius),
		Atmosphere:      p.Atmosphere,
		Crust:           p.Crust,
	}
	data.EffTemp = BlackBodyTemperature(p.EffLumin, p.Albedo, p.Epsilon, p.RadEfficRatio)

	return &Body{
		ID:       NoBody,
		Name:     p.Name,
		Kind:     kind,
		Position: p.Position,
		Mass:     mass,
		Radius:   radius,
		Parent:   NoBody,
		Planet:   data,
	}, nil
}

// OrbitalPeriod applies Kepler's third law: distance in AU, masses in kg,
// result in days.
func OrbitalPeriod(distanceAU, mass, parentMass float64) float64 {
	a := distanceAU * phys.AU
	seconds := 2 * math.Pi * math.Sqrt(a*a*a/(phys.G*(mass+parentMass)))
	return seconds / phys.SecondsPerDay
}

// OrbitalDistance inverts OrbitalPeriod: period in days, result in AU.
func OrbitalDistance(periodDays, mass, parentMass float64) float64 {
	n := periodDays * phys.SecondsPerDay / (2 * math.Pi)
	return math.Cbrt(phys.G*(mass+parentMass)*n*n) / phys.AU
}

// IncidentFlux returns the effLumin term for a star of luminosity L☉ at
// distance AU: the luminosity divided by the squared distance in metres.
func IncidentFlux(luminosity, distanceAU float64) float64 {
	d := distanceAU * phys.AU
	return luminosity * phys.SolarLuminosity / (d * d)
}

// BlackBodyTemperature returns the equilibrium temperature for incident
// effLumin, albedo, emissivity and radiative efficiency ratio.
func BlackBodyTemperature(effLumin, albedo, epsilon, radEfficRatio float64) float64 {
	flux := radEfficRatio * (effLumin / (4 * math.Pi)) * (1 - albedo)
	return math.Pow(flux/(phys.StefanBoltzmann*epsilon), 0.25)
}

// HillRadius returns the Hill sphere radius in AU of a body of mass orbiting
// a parent of parentMass at distanceAU.
func HillRadius(distanceAU, mass, parentMass float64) (float64, error) {
	if distanceAU <= 0 || mass <= 0 || parentMass <= 0 {
		return 0, fmt.Errorf("%w (distance=%g AU, mass=%g, parent=%g)", ErrHillRadius, distanceAU, mass, parentMass)
	}
	return distanceAU * math.Cbrt(mass/(3*parentMass)), nil
}

// RocheLimit returns the rigid-body Roche limit in metres for a satellite
// around a primary.
func RocheLimit(primaryRadius, primaryMass, satRadius, satMass float64) (float64, error) {
	if primaryRadius <= 0 || primaryMass <= 0 || satRadius <= 0 || satMass <= 0 {
		return 0, ErrRocheLimit
	}
	rhoP := density(primaryMass, primaryRadius)
	rhoS := density(satMass, satRadius)
	return primaryRadius * math.Cbrt(2*rhoP/rhoS), nil
}

func density(mass, radius float64) float64 {
	return mass / (4.0 / 3.0 * math.Pi * radius * radius * radius)
}

// HillRadius on a body returns the stored value, failing clearly for stars
// and bodies built without an orbit.
func (b *Body) HillRadius() (float64, error) {
	if b.Planet == nil || b.Planet.HillRadius <= 0 {
		return 0, fmt.Errorf("%w: %q has no orbit", ErrHillRadius, b.Name)
	}
	return b.Planet.HillRadius, nil
}
