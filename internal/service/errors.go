package service

import "errors"

// Sentinel errors shared by the services. Handlers map them onto HTTP
// statuses; anything unwrapped is a 500.
var (
	// ErrNotFound covers missing or moderation-hidden resources.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden covers callers acting on resources they do not own or
	// participate in.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict covers duplicate reports, invalid state transitions and
	// other uniqueness violations.
	ErrConflict = errors.New("conflict")
	// ErrValidation covers malformed input that passed transport decoding
	// but failed domain checks.
	ErrValidation = errors.New("invalid input")
)
