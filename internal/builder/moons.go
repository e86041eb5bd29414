package builder

import (
	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/entropy"
	"github.com/talgya/planetgen/internal/phys"
	"github.com/talgya/planetgen/internal/system"
)

// placeMoons runs the slot walk again at Hill-sphere scale. Moons share a
// mass pool of a few percent of the host; the walk ends at the stable edge
// of the Hill sphere, when the pool can no longer form a moon, or at the
// moon cap.
func (r *run) placeMoons(star, host *body.Body) error {
	hill, err := host.HillRadius()
	if err != nil {
		return err
	}
	limit := hill * entropy.Uniform(r.rng, r.cfg.MoonHillMin, r.cfg.MoonHillMax)
	available := host.Planet.EarthMass * r.cfg.MoonMassFraction.Sample(r.rng)
	law := system.SpacingLaw{
		D0: limit * r.cfg.MoonSpacingD0.Sample(r.rng),
		K:  r.cfg.SpacingK.Sample(r.rng),
	}

	moons := 0
	for slot := 1; moons < r.cfg.MaxMoons; slot++ {
		distance := law.Distance(slot)
		if distance > limit || available <= r.cfg.MinPlanetMass {
			break
		}
		if !entropy.Bernoulli(r.rng, r.cfg.FormationProbability) {
			continue
		}

		kind, ok, err := r.ClassifyMoon(r.rng, available)
		if err != nil {
			return err
		}
		if !ok {
			r.deadEnd("no moon kind fits", "host", host.Name, "available", available)
			break
		}

		mass, radius := r.sampleMassRadius(body.Kinds[kind], available)
		roche, err := body.RocheLimit(host.Radius, host.Mass, radius*phys.EarthRadius, mass*phys.EarthMass)
		if err != nil {
			return err
		}
		if distance*phys.AU < roche {
			r.deadEnd("moon inside roche limit", "host", host.Name, "distance", distance)
			continue
		}

		name, ok := r.names.next()
		if !ok {
			r.deadEnd("moon name collision", "host", host.Name)
			continue
		}
		moon, err := r.genBody(kind, star, placement{
			parent:       host,
			name:         name,
			distance:     distance,
			starDistance: host.Planet.OrbitalDistance,
			retrograde:   r.cfg.MoonRetrogradeChance,
			mass:         mass,
			radius:       radius,
		})
		if err != nil {
			return err
		}
		if _, err := r.sys.Add(host.ID, moon); err != nil {
			r.deadEnd("moon not registered", "body", moon.Name, "error", err)
			continue
		}
		available -= mass
		moons++
		r.stats.Moons++
	}
	return nil
}
