package auth

import "batchkit/internal/errors"

var (
	// ErrMissingToken is returned when a request carries no bearer token
	ErrMissingToken = errors.New(errors.Unauthorized, "missing bearer token", nil)
	// ErrMalformedToken is returned for tokens that do not look like ours
	ErrMalformedToken = errors.New(errors.Unauthorized, "malformed token", nil)
	// ErrInvalidToken is returned when no configured hash matches
	ErrInvalidToken = errors.New(errors.Unauthorized, "invalid token", nil)
)
