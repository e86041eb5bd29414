package body

// ID indexes a body inside its system's arena.
type ID int

// NoBody marks an absent parent.
const NoBody ID = -1

// Body is one astronomical body. Exactly one of Star or Planet is set,
// matching Kind. Parent and Satellites are arena indices, never pointers.
type Body struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	Kind     Kind            `json:"kind"`
	Position PolarCoordinate `json:"position"`
	Mass     float64         `json:"mass"`   // kg
	Radius   float64         `json:"radius"` // m

	Parent     ID   `json:"parent"`
	Satellites []ID `json:"satellites,omitempty"`

	Star   *StarData   `json:"star,omitempty"`
	Planet *PlanetData `json:"planet,omitempty"`
}

// DisplayFields is the read-only projection shown for a selected body.
type DisplayFields struct {
	Name            string  `json:"name"`
	Kind            string  `json:"kind"`
	Mass            float64 `json:"mass"`
	Radius          float64 `json:"radius"`
	Temperature     float64 `json:"temperature"`
	OrbitalDistance float64 `json:"orbital_distance"`
	OrbitalPeriod   float64 `json:"orbital_period"`
}

// Display projects the body for the selection UI.
func (b *Body) Display() DisplayFields {
	d := DisplayFields{
		Name:   b.Name,
		Kind:   b.Kind.String(),
		Mass:   b.Mass,
		Radius: b.Radius,
	}
	switch {
	case b.Star != nil:
		d.Temperature = b.Star.SurfaceTemp
	case b.Planet != nil:
		d.Temperature = b.Planet.EffTemp
		d.OrbitalDistance = b.Planet.OrbitalDistance
		d.OrbitalPeriod = b.Planet.OrbitalPeriod
	}
	return d
}

// HasParent reports whether the body has been attached to a parent.
func (b *Body) HasParent() bool {
	return b.Parent != NoBody
}
