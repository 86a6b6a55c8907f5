// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as the booking store and handlers to distinguish between
// different failure scenarios without inspecting SQL error strings.
package repository

import "errors"

// ErrLibraryNotFound is returned when a lookup references a library
// that was never provisioned.  Handlers translate this into 404.
var ErrLibraryNotFound = errors.New("library not found")

// ErrSeatNotFound is returned when a lookup references a seat that is
// not part of the provisioned layout.  Handlers translate this into
// 404 via the store's own NotFound error.
var ErrSeatNotFound = errors.New("seat not found")

// ErrEmailTaken is returned when registering a user with an email that
// already exists.  Handlers translate this into a 409 response.
var ErrEmailTaken = errors.New("email already registered")
