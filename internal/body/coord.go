// Package body holds the astronomical body model: a tagged-variant record
// stored in a flat arena, plus the closed-form physics every kind shares.
package body

import "fmt"

// PolarCoordinate locates a body relative to its parent.
//
// R is the radial distance in AU, T the polar (orbital phase) angle and P the
// azimuth, both in radians. The animation loop advances T in place; nothing
// else mutates a coordinate after generation.
type PolarCoordinate struct {
	R float64 `json:"r"`
	T float64 `json:"t"`
	P float64 `json:"p"`
}

// Polar builds a coordinate.
func Polar(r, t, p float64) PolarCoordinate {
	return PolarCoordinate{R: r, T: t, P: p}
}

func (c PolarCoordinate) String() string {
	return fmt.Sprintf("(r=%.4g AU, t=%.3f, p=%.3f)", c.R, c.T, c.P)
}
