package body

import "errors"

var (
	// ErrInvalidInput reports a constructor argument outside its domain.
	ErrInvalidInput = errors.New("invalid body input")
	// ErrUninitialized reports a derived field read before it was computed.
	ErrUninitialized = errors.New("uninitialized body state")
	// ErrHillRadius reports a Hill sphere request without an orbit or mass.
	ErrHillRadius = errors.New("hill radius requires positive orbital radius and masses")
	// ErrRocheLimit reports a Roche limit request with non-positive inputs.
	ErrRocheLimit = errors.New("roche limit requires positive masses and radii")
)
