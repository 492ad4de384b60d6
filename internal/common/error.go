// Package common defines shared constants and sentinel errors used across
// the site and docstore layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Validation errors rejected before any store call.
	ErrSelfChange = errors.New("cannot modify own account")
)
