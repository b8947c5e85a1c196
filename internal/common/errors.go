// Package common defines sentinel errors shared by the client and server
// layers of docme. Callers should match them with errors.Is.
package common

import "errors"

var (
	// ErrNotFound is returned when an entity id has no (live) row.
	ErrNotFound = errors.New("not found")

	// ErrStorage wraps local persistence failures.
	ErrStorage = errors.New("storage error")

	// ErrTransient marks connection failures, timeouts and 5xx answers.
	// The operation may succeed on the next sync cycle.
	ErrTransient = errors.New("transient network error")

	// ErrUnauthorized means the credential is missing, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDecoding marks a malformed remote payload.
	ErrDecoding = errors.New("decoding error")

	ErrValidation = errors.New("validation error")
	ErrCycle      = errors.New("folder hierarchy cycle")
	ErrConflict   = errors.New("already exists")
	ErrInternal   = errors.New("internal error")
)
