// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the session state machine to distinguish between
// different failure scenarios without string matching.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// email constraint on the users table. Handlers translate this into
// an HTTP 409, the session layer into an account-exists failure.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as replaying a status transition that
// has already happened. Handlers should translate this into an
// HTTP 409.
var ErrConflict = errors.New("conflict")
