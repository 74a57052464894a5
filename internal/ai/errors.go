package ai

import "errors"

var (
	// ErrInvalidState is returned when a shot result is recorded for a
	// cell that is out of bounds or already resolved. This is a caller
	// bug upstream and must never be swallowed.
	ErrInvalidState = errors.New("invalid board knowledge state")

	// ErrSamplingExhausted is returned when the placement sampler cannot
	// produce a single placement consistent with the recorded evidence.
	// It means the knowledge itself is contradictory; retrying cannot fix it.
	ErrSamplingExhausted = errors.New("placement sampling exhausted")
)
