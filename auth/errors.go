package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrSecretTooShort indicates the JWT secret is too short.
	ErrSecretTooShort = errors.New("JWT secret must be at least 32 bytes")

	// ErrQSHMismatch indicates the token was issued for a different request.
	ErrQSHMismatch = errors.New("query string hash does not match request")

	// ErrMissingCredentials indicates an authenticator was built without credentials.
	ErrMissingCredentials = errors.New("missing credentials")
)
