package engine

import (
	"math"

	"github.com/talgya/planetgen/internal/phys"
	"github.com/talgya/planetgen/internal/system"
)

// Animator advances orbital phase. It touches only Position.T; every other
// field of a body is left as generated.
type Animator struct {
	SpeedFactor float64
}

// Advance moves every orbiting body of sys forward by dt simulated seconds:
// t = (t + dir·speed·2π·(dt/86400)/period) mod 2π, dir = −1 for retrograde
// orbits. The caller holds whatever lock guards sys.
func (a Animator) Advance(sys *system.System, dt float64) {
	for _, b := range sys.Bodies() {
		if b.Planet == nil || b.Planet.OrbitalPeriod <= 0 {
			continue
		}
		dir := 1.0
		if b.Planet.Retrograde {
			dir = -1
		}
		t := b.Position.T + dir*a.SpeedFactor*2*math.Pi*(dt/phys.SecondsPerDay)/b.Planet.OrbitalPeriod
		t = math.Mod(t, 2*math.Pi)
		if t < 0 {
			t += 2 * math.Pi
		}
		b.Position.T = t
	}
}
