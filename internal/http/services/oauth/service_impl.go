package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/metrics"
	"github.com/dropDatabas3/linkjohn/internal/oauth"
	"github.com/dropDatabas3/linkjohn/internal/observability/logger"
	"github.com/dropDatabas3/linkjohn/internal/security/token"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// service implements Service.
type service struct {
	repo     core.Repository
	refresh  *token.RefreshStore
	resolver *auth.Resolver
}

func (s *service) Login(ctx context.Context, code string, client oauth.Client) (*LoginResult, error) {
	provider := client.Provider()
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.login"),
		logger.Provider(provider.String()),
	)

	info, err := client.ExchangeCode(ctx, code)
	if err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}

	acct, err := client.FetchAccount(ctx, info.AccessToken)
	if err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}

	tp, err := s.resolver.GetProvider(info.IDToken)
	if err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}
	sub, err := tp.ParseSub(info.IDToken)
	if err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}

	member, staged, err := s.resolveMember(ctx, sub, provider, acct.Email, info)
	if err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}
	if staged {
		log.Info("first login, signup pending", logger.Sub(sub))
		metrics.Logins.WithLabelValues(provider.String(), "signup_required").Inc()
		return &LoginResult{SignupRequired: true, Sub: sub, Provider: provider}, nil
	}

	if err := s.refresh.Save(ctx, member.ID, info.RefreshToken); err != nil {
		metrics.Logins.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}

	log.Info("login ok", logger.MemberID(member.ID))
	metrics.Logins.WithLabelValues(provider.String(), "ok").Inc()
	return &LoginResult{
		MemberID:     member.ID,
		AccessToken:  info.IDToken,
		RefreshToken: info.RefreshToken,
	}, nil
}

// resolveMember finds the member for a provider identity, staging an
// orphan link when this is a first login. staged=true means the caller
// must hand the user to signup completion.
func (s *service) resolveMember(ctx context.Context, sub string, provider core.ProviderType, email string, info *oauth.TokenInfo) (*core.Member, bool, error) {
	link, err := s.repo.GetLinkBySubAndProvider(ctx, sub, provider)
	switch {
	case err == nil && link.Linked():
		m, err := s.repo.GetMemberByID(ctx, *link.MemberID)
		return m, false, err

	case err == nil:
		// Orphan link already staged (earlier login attempt).
		return nil, true, nil

	case !errors.Is(err, core.ErrNotFound):
		return nil, false, err
	}

	// No link yet. Accounts that predate federation may match by email.
	if m, err := s.repo.GetMemberByUsername(ctx, email); err == nil {
		return m, false, nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	// First login: stage the identity so signup completion can find it.
	err = s.repo.CreateLink(ctx, &core.OAuthLink{
		Sub:          sub,
		Provider:     provider,
		AccessToken:  info.AccessToken,
		RefreshToken: info.RefreshToken,
	})
	if errors.Is(err, core.ErrConflict) {
		// Concurrent first login won the insert. Same outcome for both
		// callers: signup still pending, unless the race already
		// completed it.
		link, rerr := s.repo.GetLinkBySubAndProvider(ctx, sub, provider)
		if rerr != nil {
			return nil, false, rerr
		}
		if link.Linked() {
			m, merr := s.repo.GetMemberByID(ctx, *link.MemberID)
			return m, false, merr
		}
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest, client oauth.Client) (*LoginResult, error) {
	provider := client.Provider()
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.signup"),
		logger.Provider(provider.String()),
		logger.Sub(req.Sub),
	)

	var out *LoginResult
	err := s.repo.InTx(ctx, func(r core.Repository) error {
		link, err := r.GetLinkBySub(ctx, req.Sub)
		if err != nil {
			return fmt.Errorf("signup: staged link: %w", err)
		}
		if link.Linked() {
			return ErrAlreadyCompleted
		}

		// Re-fetch from the provider with the staged access token: the
		// member is built from provider facts, not request fields.
		acct, err := client.FetchAccount(ctx, link.AccessToken)
		if err != nil {
			return err
		}

		member := &core.Member{
			Username: uuid.NewString(),
			Nickname: acct.Nickname,
		}
		if err := r.CreateMember(ctx, member, req.Agreements); err != nil {
			return err
		}
		if err := r.AttachMember(ctx, link.ID, member.ID); err != nil {
			return err
		}

		// Fresh tokens instead of the possibly stale ones staged at login.
		info, err := client.ReissueToken(ctx, link.RefreshToken)
		if err != nil {
			return err
		}
		if err := r.RotateLinkTokens(ctx, link.ID, info.AccessToken, info.RefreshToken); err != nil {
			return err
		}
		if err := s.refresh.Save(ctx, member.ID, info.RefreshToken); err != nil {
			return err
		}

		out = &LoginResult{
			MemberID:     member.ID,
			AccessToken:  info.IDToken,
			RefreshToken: info.RefreshToken,
		}
		return nil
	})
	if err != nil {
		metrics.Signups.WithLabelValues(provider.String(), "error").Inc()
		return nil, err
	}

	log.Info("signup completed", logger.MemberID(out.MemberID))
	metrics.Signups.WithLabelValues(provider.String(), "ok").Inc()
	return out, nil
}

func (s *service) Reissue(ctx context.Context, refreshToken string) (*ReissueResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("oauth.reissue"))

	// The refresh token is opaque: probe each provider's link store.
	for _, tp := range s.resolver.Providers() {
		memberID, err := tp.ValidateRefreshToken(ctx, refreshToken)
		if errors.Is(err, auth.ErrUnauthenticated) {
			continue
		}
		if err != nil {
			return nil, err
		}

		pair, err := tp.Reissue(ctx, refreshToken)
		if err != nil {
			metrics.Reissues.WithLabelValues(tp.Provider().String(), "error").Inc()
			return nil, err
		}
		if err := s.refresh.Save(ctx, memberID, pair.RefreshToken); err != nil {
			return nil, err
		}

		log.Info("reissue ok", logger.MemberID(memberID), logger.Provider(tp.Provider().String()))
		metrics.Reissues.WithLabelValues(tp.Provider().String(), "ok").Inc()
		return &ReissueResult{
			MemberID:     memberID,
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}, nil
	}

	return nil, auth.ErrUnauthenticated
}
