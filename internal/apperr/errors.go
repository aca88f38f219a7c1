// Package apperr defines the sentinel errors shared across Kontrib layers.
// Services return these (usually wrapped); the HTTP layer maps them to
// status codes.
package apperr

import "errors"

var (
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the write collides with existing state (duplicate join,
	// duplicate phone).
	ErrConflict = errors.New("conflict")

	// ErrForbidden: the acting identity lacks authority over the target.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation: malformed input rejected before any state mutation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition: a confirm/reject was attempted on a contribution
	// that is no longer pending. Never retried, never swallowed.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidCredential: a device token or session no longer resolves to
	// an identity. Clients recover by clearing local session state.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrUnreachable: the backend could not be reached. Clients recover by
	// falling back to cached session state.
	ErrUnreachable = errors.New("backend unreachable")
)
