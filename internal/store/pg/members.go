package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateMember(ctx context.Context, m *core.Member, agreements []core.Agreement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	// member + agreements deben quedar juntos
	return s.InTx(ctx, func(r core.Repository) error {
		ts := r.(*Store)

		const q = `
			INSERT INTO members (id, username, nickname, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING created_at`
		if err := ts.q.QueryRow(ctx, q, m.ID, m.Username, m.Nickname).Scan(&m.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return core.ErrConflict
			}
			return err
		}

		const qa = `
			INSERT INTO member_agreements (member_id, name, agreed, agreed_at)
			VALUES ($1, $2, $3, NOW())`
		for _, a := range agreements {
			if _, err := ts.q.Exec(ctx, qa, m.ID, a.Name, a.Agreed); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetMemberByID(ctx context.Context, id string) (*core.Member, error) {
	const q = `SELECT id, username, nickname, created_at FROM members WHERE id = $1`
	return s.scanMember(s.q.QueryRow(ctx, q, id))
}

func (s *Store) GetMemberByUsername(ctx context.Context, username string) (*core.Member, error) {
	const q = `SELECT id, username, nickname, created_at FROM members WHERE username = $1`
	return s.scanMember(s.q.QueryRow(ctx, q, username))
}

func (s *Store) scanMember(row pgx.Row) (*core.Member, error) {
	var m core.Member
	if err := row.Scan(&m.ID, &m.Username, &m.Nickname, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
