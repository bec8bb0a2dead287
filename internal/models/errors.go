package models

import "errors"

// Sentinel domain errors. Handlers map these to HTTP status codes in one
// place so services and repositories never deal with HTTP directly.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNoClinic        = errors.New("no clinic context available")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream provider failure")
)
