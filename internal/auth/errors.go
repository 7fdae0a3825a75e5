package auth

import "errors"

var (
	// ErrUnauthenticated means the token or refresh token does not
	// resolve to a linked member. Surfaced as an auth failure, never retried.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrUnsupportedProvider means the token carries no recognizable
	// provider claim.
	ErrUnsupportedProvider = errors.New("auth: unsupported provider")
)
