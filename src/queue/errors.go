package queue

import "errors"

// Sentinel errors for the allocator. Every operation detects these before
// performing any write, so a returned error always means zero mutations.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrAuthorization    = errors.New("not authorized")
	ErrCapacityExceeded = errors.New("service is at full capacity")
)
