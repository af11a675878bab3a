// Package common defines the constants and sentinel errors shared by the
// authkeeper server, its transports and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("concurrent update, retry the request")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Sign-up errors.
	ErrUsernameTaken = errors.New("user already exists")
	ErrEmailTaken    = errors.New("email already in use")

	// Sign-in / sign-out errors.
	ErrInvalidCredentials = errors.New("user not found or invalid password")
	ErrAlreadyLoggedOut   = errors.New("user already logged out")

	// Token errors. ErrClientNotFound never leaves the session service,
	// it is reported to callers as ErrInvalidToken.
	ErrInvalidToken   = errors.New("invalid token provided")
	ErrMissingToken   = errors.New("missing token")
	ErrClientNotFound = errors.New("client not found")

	// Startup configuration errors.
	ErrMissingSecret = errors.New("missing secret")
	ErrInvalidTTL    = errors.New("access token ttl must be at least one second")
)
