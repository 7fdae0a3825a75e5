// Package auth resolves session tokens into application principals and
// drives refresh-token rotation against the provider that issued them.
package auth

// Principal is the authenticated identity attached to a request.
// It never carries credential material and grants no extra permissions
// beyond the default set.
type Principal struct {
	MemberID string
	Username string
}

// TokenPair is a session artifact: the provider id_token reused as the
// application access token, plus the application refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
