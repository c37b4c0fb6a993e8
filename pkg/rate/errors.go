package rate

import "errors"

// Sentinel errors for the rate layer.
var (
	// ErrNotFound indicates a missing seller, base card or override reference.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a malformed request (missing weight, bad tuple).
	ErrValidation = errors.New("validation failed")
)
