// Package builder generates planetary systems: a star from a stellar
// nursery, planets placed along a spacing law and classified by the frost
// line, and moons inside each host's Hill sphere.
package builder

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/catalog"
	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/nursery"
	"github.com/talgya/planetgen/internal/phys"
	"github.com/talgya/planetgen/internal/system"
)

// Seed offsets for independent random streams.
const (
	namingSeedOffset  = 1
	densitySeedOffset = 2
)

// Stats summarises one generation run.
type Stats struct {
	Seed     int64          `json:"seed"`
	Slots    int            `json:"slots"`     // slots evaluated
	Empty    int            `json:"empty"`     // slots where nothing formed
	Planets  int            `json:"planets"`
	Moons    int            `json:"moons"`
	DeadEnds int            `json:"dead_ends"` // bodies that formed but fit no kind
	Nursery  nursery.Result `json:"nursery"`

	// GiantHostProbability is the metallicity-based chance this star hosts
	// a giant planet.
	GiantHostProbability float64 `json:"giant_host_probability"`
}

// Builder generates planetary systems. A Builder may be shared between
// goroutines; every run uses its own random streams and system.
type Builder struct {
	cfg     GenConfig
	catalog *catalog.Catalog

	mu    sync.Mutex
	stats Stats
}

// New returns a builder. A nil catalog uses the bundled one.
func New(cfg GenConfig, cat *catalog.Catalog) *Builder {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Builder{cfg: cfg, catalog: cat}
}

// Config returns the builder's parameters.
func (b *Builder) Config() GenConfig {
	return b.cfg
}

// LastStats returns the stats of the most recent Generate call.
func (b *Builder) LastStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// GenRandSimplePlanetarySystem generates a system with default parameters
// and a random seed.
func GenRandSimplePlanetarySystem(name string) (*system.System, error) {
	return New(DefaultGenConfig(), nil).Generate(name, 0)
}

// Generate builds a system from seed. Seed 0 draws a random seed; the seed
// used is recorded on the system.
func (b *Builder) Generate(name string, seed int64) (*system.System, error) {
	sys, stats, err := b.GenerateWithStats(name, seed)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.stats = stats
	b.mu.Unlock()
	return sys, nil
}

// GenerateWithStats is Generate returning the run's stats directly.
func (b *Builder) GenerateWithStats(name string, seed int64) (*system.System, Stats, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}

	r := &run{
		Builder: b,
		rng:     entropy.NewRand(seed),
		names:   newNamer(entropy.Derive(seed, namingSeedOffset)),
		stats:   Stats{Seed: seed},
	}

	field := nursery.NewDensityField(seed + densitySeedOffset)
	x := entropy.Uniform(r.rng, -b.cfg.GalacticExtent, b.cfg.GalacticExtent)
	y := entropy.Uniform(r.rng, -b.cfg.GalacticExtent, b.cfg.GalacticExtent)
	metallicity := b.cfg.Metallicity.Sample(r.rng)
	formed := field.NurseryAt(x, y, metallicity).Form(r.rng)
	r.stats.Nursery = formed

	star, err := b.GenStar(r.rng, formed)
	if err != nil {
		return nil, r.stats, err
	}
	r.stats.GiantHostProbability = phys.HostProbability(body.SpectralLetter(star.Star.SpectralType), metallicity)
	if name == "" {
		name = star.Name
	}

	sys, err := system.New(name, star)
	if err != nil {
		return nil, r.stats, err
	}
	sys.Seed = seed
	sys.Spacing = system.SpacingLaw{
		D0: b.cfg.SpacingD0.Sample(r.rng),
		K:  b.cfg.SpacingK.Sample(r.rng),
	}
	r.sys = sys
	r.names.reserve(star.Name)

	if err := r.placePlanets(formed.PlanetMassEarths()); err != nil {
		return nil, r.stats, err
	}

	slog.Info("system generated",
		"system", sys.Name,
		"seed", seed,
		"star", star.Star.SpectralType,
		"planets", r.stats.Planets,
		"moons", r.stats.Moons,
		"empty", r.stats.Empty,
		"dead_ends", r.stats.DeadEnds,
	)
	return sys, r.stats, nil
}

// GenStar creates the root star for a nursery result: usually a main
// sequence star of the sampled mass, occasionally a white dwarf.
func (b *Builder) GenStar(rng *rand.Rand, formed nursery.Result) (*body.Body, error) {
	origin := body.Polar(0, 0, 0)
	if entropy.Bernoulli(rng, b.cfg.WhiteDwarfChance) {
		return body.GenWhiteDwarf(rng, starName(rng, body.WhiteDwarfClass), origin)
	}
	class := body.SpectralClassForMass(formed.StarMass)
	return body.GenMainSequence(starName(rng, class), formed.StarMass, origin)
}

// run is the state of one generation.
type run struct {
	*Builder
	rng   *rand.Rand
	names *namer
	sys   *system.System
	stats Stats
}

// placePlanets walks orbital slots outward until the distance bound, the
// mass budget or the slot budget is exhausted. The first slot is always
// attempted.
func (r *run) placePlanets(budget float64) error {
	star, err := r.sys.RootBody()
	if err != nil {
		return err
	}
	slots := int(math.Round(r.cfg.SlotBudget.Sample(r.rng)))

	for slot := 1; ; slot++ {
		distance := r.sys.Spacing.Distance(slot)
		if slot > 1 && (distance > r.cfg.MaxOrbitalDistance || budget <= r.cfg.MinPlanetMass || slot > slots) {
			break
		}
		r.stats.Slots++

		if !entropy.Bernoulli(r.rng, r.cfg.FormationProbability) {
			r.stats.Empty++
			continue
		}

		kind, ok, err := r.Classify(r.rng, distance, star.Star.FrostLine, budget)
		if err != nil {
			return err
		}
		if !ok {
			r.deadEnd("no planet kind fits", "slot", slot, "distance", distance, "budget", budget)
			continue
		}

		name, ok := r.names.next()
		if !ok {
			slog.Warn("planet name collision", "system", r.sys.Name, "slot", slot)
			r.stats.DeadEnds++
			continue
		}
		planet, err := r.genBody(kind, star, placement{
			parent:       star,
			name:         name,
			distance:     distance,
			starDistance: distance,
			maxMass:      budget,
			retrograde:   r.cfg.PlanetRetrogradeChance,
		})
		if err != nil {
			return err
		}
		if _, err := r.sys.Add(star.ID, planet); err != nil {
			slog.Warn("planet not registered", "system", r.sys.Name, "body", planet.Name, "error", err)
			continue
		}
		budget -= planet.Planet.EarthMass
		r.stats.Planets++

		if planet.Planet.EarthMass > r.cfg.MoonHostMinMass {
			if err := r.placeMoons(star, planet); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) deadEnd(msg string, args ...any) {
	r.stats.DeadEnds++
	slog.Debug(msg, append([]any{"system", r.sys.Name}, args...)...)
}

// GenPlanet creates a planet of kind orbiting star at distance AU. It is
// not registered with any system.
func (b *Builder) GenPlanet(rng *rand.Rand, kind body.Kind, star *body.Body, name string, distance float64) (*body.Body, error) {
	r := &run{Builder: b, rng: rng}
	return r.genBody(kind, star, placement{
		parent:       star,
		name:         name,
		distance:     distance,
		starDistance: distance,
		maxMass:      math.Inf(1),
		retrograde:   b.cfg.PlanetRetrogradeChance,
	})
}

// placement is where and under what limits a body forms.
type placement struct {
	parent       *body.Body
	name         string
	distance     float64 // AU from parent
	starDistance float64 // AU from the star, for incident flux
	maxMass      float64 // Earth masses
	retrograde   float64 // chance of retrograde orbit
	mass, radius float64 // pre-sampled; zero draws them
}

// genBody samples the physical parameters of a planet-kind body and builds
// it.
func (r *run) genBody(kind body.Kind, star *body.Body, p placement) (*body.Body, error) {
	spec, ok := body.Kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a planet kind", body.ErrInvalidInput, kind)
	}
	mass, radius := p.mass, p.radius
	if mass == 0 {
		mass, radius = r.sampleMassRadius(spec, p.maxMass)
	}

	rad, err := entropy.PickWithProbability(r.rng, r.cfg.RadEfficRatios, r.cfg.RadEfficProbabilities)
	if err != nil {
		return nil, err
	}

	var crust []string
	for _, m := range r.catalog.Sample(r.rng, r.cfg.CrustSampleSize) {
		crust = append(crust, m.Name)
	}

	planet, err := body.NewPlanet(kind, body.PlanetParams{
		Name:          p.name,
		EarthMass:     mass,
		EarthRadius:   radius,
		Parent:        p.parent,
		Position:      body.Polar(p.distance, entropy.Uniform(r.rng, 0, 2*math.Pi), entropy.ClampedNormal(r.rng, 0, 0.02, -0.1, 0.1)),
		EffLumin:      body.IncidentFlux(star.Star.Luminosity, p.starDistance),
		Albedo:        entropy.Uniform(r.rng, spec.AlbedoRange[0], spec.AlbedoRange[1]),
		Epsilon:       entropy.Uniform(r.rng, r.cfg.Emissivity[0], r.cfg.Emissivity[1]),
		RadEfficRatio: rad,
		Retrograde:    entropy.Bernoulli(r.rng, p.retrograde),
		Atmosphere:    spec.Atmosphere(),
		Crust:         crust,
	})
	if err != nil {
		return nil, err
	}
	planet.Planet.Habitable = kind.Rocky() && star.Star.InHabitableZone(p.starDistance)
	return planet, nil
}

// sampleMassRadius draws a mass within the kind's range, capped at maxMass,
// and a radius for it.
func (r *run) sampleMassRadius(spec body.KindSpec, maxMass float64) (mass, radius float64) {
	hi := math.Min(spec.MassRange.Max, maxMass)
	mass = entropy.Uniform(r.rng, spec.MassRange.Min, hi)
	return mass, spec.EstimateRadius(r.rng, mass)
}
