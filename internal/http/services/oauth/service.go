// Package oauth orchestrates the federated login, signup-completion and
// reissue flows end to end: provider exchange, account linking, token
// rotation and refresh-token records.
package oauth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/security/token"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// Service drives the login and signup flows. The caller supplies the
// oauth.Client for the provider being used; the service never guesses.
type Service interface {
	// Login exchanges the authorization code and resolves the local
	// member. A first-time identity yields SignupRequired=true carrying
	// sub and provider - that is a normal branch of the protocol, not
	// an error.
	Login(ctx context.Context, code string, client oauth.Client) (*LoginResult, error)

	// Signup completes registration for a previously staged identity.
	// Returns core.ErrNotFound when the sub was never staged and
	// ErrAlreadyCompleted when the link already has a member.
	Signup(ctx context.Context, req SignupRequest, client oauth.Client) (*LoginResult, error)

	// Reissue rotates an application refresh token, whichever provider
	// owns it. Returns auth.ErrUnauthenticated when no provider does.
	Reissue(ctx context.Context, refreshToken string) (*ReissueResult, error)
}

// LoginResult is the outcome of Login and Signup.
// Exactly one of the two shapes is populated: tokens for an
// authenticated member, or the signup-completion handoff (Sub/Provider).
type LoginResult struct {
	SignupRequired bool
	Sub            string
	Provider       core.ProviderType

	MemberID     string
	AccessToken  string
	RefreshToken string
}

// SignupRequest carries the signup-completion input. Email and Nickname
// are advisory: the member is built from the account info re-fetched
// from the provider, so stale or forged values here cannot land in the
// member row. Only Agreements are taken from the client.
type SignupRequest struct {
	Sub        string
	Email      string
	Nickname   string
	Agreements []core.Agreement
}

// ReissueResult is a rotated token pair plus the owning member.
type ReissueResult struct {
	MemberID     string
	AccessToken  string
	RefreshToken string
}

// ErrAlreadyCompleted means the link for the sub is already attached to
// a member: the signup-completion step was already done.
var ErrAlreadyCompleted = errors.New("oauth: signup already completed")

// Deps contains the service dependencies.
type Deps struct {
	Repo     core.Repository
	Refresh  *token.RefreshStore
	Resolver *auth.Resolver
}

// NewService builds the orchestrator.
func NewService(d Deps) Service {
	return &service{
		repo:     d.Repo,
		refresh:  d.Refresh,
		resolver: d.Resolver,
	}
}
