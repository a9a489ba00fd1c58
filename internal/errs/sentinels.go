// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrValidation indicates malformed card content or input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateID indicates an id collision on insert.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound indicates an operation on an unknown card id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRating indicates a rating outside the configured scale.
	ErrInvalidRating = errors.New("invalid rating")
)
