package dac

import "errors"

// Domain errors for the dac package.
var (
	// ErrUnknownFeature is returned when a feature name is not recognised.
	// Distinct from "known but unsupported on this unit", which operations
	// signal with sentinel results rather than errors.
	ErrUnknownFeature = errors.New("dac: unknown feature")
)
