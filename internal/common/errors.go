// Package common defines sentinel errors and shared constants used across
// the lenden client layers. Callers match these with errors.Is.
package common

import "errors"

var (
	// Validation errors are raised locally, before any network call.
	ErrValidation = errors.New("validation error")

	// Gateway-level errors.
	ErrUnavailable   = errors.New("server unavailable")
	ErrRequestFailed = errors.New("request failed")

	// Session errors.
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoStoredSession = errors.New("no stored session")

	// Keystore errors.
	ErrNotFound = errors.New("not found")
)
