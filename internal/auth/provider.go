package auth

import (
	"context"
	"errors"
	"fmt"

	jwtx "github.com/dropDatabas3/linkjohn/internal/jwt"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// TokenProvider validates and reissues session tokens for one identity
// provider. One instance per provider type, bound to its oauth.Client.
type TokenProvider interface {
	// Provider returns the provider type this instance serves.
	Provider() core.ProviderType

	// ValidateToken checks signature and standard claims with the provider.
	ValidateToken(ctx context.Context, token string) bool

	// Authentication resolves the token's subject into a Principal via
	// the account link. Returns ErrUnauthenticated when no link or
	// member exists for the subject.
	Authentication(ctx context.Context, token string) (*Principal, error)

	// ValidateRefreshToken returns the member id that currently owns the
	// refresh token, or ErrUnauthenticated.
	ValidateRefreshToken(ctx context.Context, refreshToken string) (string, error)

	// Reissue rotates provider tokens and applies the rotation to the
	// stored link. Returns core.ErrNotFound when the rotated subject has
	// no link - a provider/store consistency violation, never swallowed.
	Reissue(ctx context.Context, refreshToken string) (*TokenPair, error)

	// CreateToken exchanges an authorization code. Thin pass-through,
	// used only during the initial login/signup sequence.
	CreateToken(ctx context.Context, code string) (*oauth.TokenInfo, error)

	// ParseSub extracts the subject claim without verifying the
	// signature (verification is ValidateToken's job).
	ParseSub(token string) (string, error)
}

// oidcProvider is the shared implementation: subject extraction and link
// resolution are identical across OIDC providers, only the wire protocol
// differs and lives behind oauth.Client.
type oidcProvider struct {
	client oauth.Client
	repo   core.Repository
}

// NewOIDCProvider builds the TokenProvider for an oauth.Client.
func NewOIDCProvider(client oauth.Client, repo core.Repository) TokenProvider {
	return &oidcProvider{client: client, repo: repo}
}

func (p *oidcProvider) Provider() core.ProviderType { return p.client.Provider() }

func (p *oidcProvider) ValidateToken(ctx context.Context, token string) bool {
	return p.client.ValidateToken(ctx, token)
}

func (p *oidcProvider) Authentication(ctx context.Context, token string) (*Principal, error) {
	sub, err := p.ParseSub(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	link, err := p.repo.GetLinkBySubAndProvider(ctx, sub, p.Provider())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !link.Linked() {
		return nil, ErrUnauthenticated
	}

	member, err := p.repo.GetMemberByID(ctx, *link.MemberID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return &Principal{MemberID: member.ID, Username: member.Username}, nil
}

func (p *oidcProvider) ValidateRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	link, err := p.repo.GetLinkByRefreshTokenAndProvider(ctx, refreshToken, p.Provider())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", err
	}
	if !link.Linked() {
		return "", ErrUnauthenticated
	}
	return *link.MemberID, nil
}

func (p *oidcProvider) Reissue(ctx context.Context, refreshToken string) (*TokenPair, error) {
	info, err := p.client.ReissueToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	sub, err := p.ParseSub(info.IDToken)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = p.repo.InTx(ctx, func(r core.Repository) error {
		link, err := r.GetLinkBySubAndProvider(ctx, sub, p.Provider())
		if err != nil {
			// Provider rotated tokens for a subject we have no link for.
			return fmt.Errorf("reissue: link for rotated subject: %w", err)
		}
		if err := r.RotateLinkTokens(ctx, link.ID, info.AccessToken, info.RefreshToken); err != nil {
			return err
		}
		pair = &TokenPair{AccessToken: info.IDToken, RefreshToken: info.RefreshToken}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (p *oidcProvider) CreateToken(ctx context.Context, code string) (*oauth.TokenInfo, error) {
	return p.client.ExchangeCode(ctx, code)
}

func (p *oidcProvider) ParseSub(token string) (string, error) {
	return jwtx.ParseClaimsField(token, "sub")
}
