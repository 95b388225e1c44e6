// Package apperr defines the error kinds the service is allowed to surface.
// Repositories and external clients translate driver errors into one of these
// at the boundary so that no raw storage error ever reaches a handler.
package apperr

import "errors"

var (
	// ErrValidation covers malformed or disallowed input, including invalid
	// or expired verification tokens.
	ErrValidation = errors.New("invalid request")

	// ErrUnauthorized is returned for bad credentials. It is deliberately the
	// same value for an unknown email and a wrong password.
	ErrUnauthorized = errors.New("invalid authentication credentials")

	// ErrForbidden is returned when credentials are valid but the account's
	// email has not been verified yet.
	ErrForbidden = errors.New("email not verified")

	ErrConflict    = errors.New("resource already exists")
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("backing store unavailable")

	// ErrUpstream is an external collaborator failure (object storage, SMTP).
	ErrUpstream = errors.New("upstream service failure")
)
