package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const linkCols = `id, member_id, sub, provider, access_token, refresh_token, created_at, updated_at`

func (s *Store) CreateLink(ctx context.Context, l *core.OAuthLink) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	// ON CONFLICT DO NOTHING + RowsAffected: la constraint UNIQUE
	// (sub, provider) es la guarda contra primeros logins concurrentes.
	const q = `
		INSERT INTO oauth_links (id, member_id, sub, provider, access_token, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (sub, provider) DO NOTHING`

	ct, err := s.q.Exec(ctx, q, l.ID, l.MemberID, l.Sub, string(l.Provider), l.AccessToken, l.RefreshToken)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrConflict
	}
	return nil
}

func (s *Store) GetLinkBySub(ctx context.Context, sub string) (*core.OAuthLink, error) {
	const q = `SELECT ` + linkCols + ` FROM oauth_links WHERE sub = $1`
	return s.scanLink(s.q.QueryRow(ctx, q, sub))
}

func (s *Store) GetLinkBySubAndProvider(ctx context.Context, sub string, p core.ProviderType) (*core.OAuthLink, error) {
	const q = `SELECT ` + linkCols + ` FROM oauth_links WHERE sub = $1 AND provider = $2`
	return s.scanLink(s.q.QueryRow(ctx, q, sub, string(p)))
}

func (s *Store) GetLinkByRefreshTokenAndProvider(ctx context.Context, refreshToken string, p core.ProviderType) (*core.OAuthLink, error) {
	const q = `SELECT ` + linkCols + ` FROM oauth_links WHERE refresh_token = $1 AND provider = $2`
	return s.scanLink(s.q.QueryRow(ctx, q, refreshToken, string(p)))
}

func (s *Store) AttachMember(ctx context.Context, linkID, memberID string) error {
	const q = `
		UPDATE oauth_links SET member_id = $2, updated_at = NOW()
		WHERE id = $1 AND member_id IS NULL`
	ct, err := s.q.Exec(ctx, q, linkID, memberID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) RotateLinkTokens(ctx context.Context, linkID, accessToken, refreshToken string) error {
	const q = `
		UPDATE oauth_links SET access_token = $2, refresh_token = $3, updated_at = NOW()
		WHERE id = $1`
	ct, err := s.q.Exec(ctx, q, linkID, accessToken, refreshToken)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) scanLink(row pgx.Row) (*core.OAuthLink, error) {
	var l core.OAuthLink
	var provider string
	if err := row.Scan(&l.ID, &l.MemberID, &l.Sub, &provider, &l.AccessToken, &l.RefreshToken, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	l.Provider = core.ProviderType(provider)
	return &l, nil
}
