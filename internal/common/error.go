// Package common defines shared constants and sentinel errors used across
// the TaskFlow server, its repositories and the operator CLI. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Precondition / input errors.
	ErrorNoUserID   = errors.New("user id is required")
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Partial-pipeline failures. The first half of the pipeline is not rolled
	// back; retrying the whole operation repairs the state.
	ErrProfileCreatedTutorialFailed = errors.New("profile created but tutorial setup failed")
	ErrTutorialDeletedReseedFailed  = errors.New("tutorial tasks deleted but reseeding failed")
)
