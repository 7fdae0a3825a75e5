// Package memory implementa core.Repository en memoria.
// Pensado para desarrollo y tests; mismas semánticas de conflicto que pg.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/linkjohn/internal/store/core"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	members map[string]core.Member     // id → member
	links   map[string]core.OAuthLink  // id → link
	agrees  map[string][]core.Agreement
}

func New() *Store {
	return &Store{
		members: make(map[string]core.Member),
		links:   make(map[string]core.OAuthLink),
		agrees:  make(map[string][]core.Agreement),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

// InTx serializa transacciones y emula rollback con snapshot + restore.
// Las escrituras fuera de transacción no quedan bloqueadas mientras corre
// fn; suficiente para dev/tests, no para producción.
func (s *Store) InTx(ctx context.Context, fn func(core.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	members map[string]core.Member
	links   map[string]core.OAuthLink
	agrees  map[string][]core.Agreement
}

func (s *Store) snapshot() memSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := memSnapshot{
		members: make(map[string]core.Member, len(s.members)),
		links:   make(map[string]core.OAuthLink, len(s.links)),
		agrees:  make(map[string][]core.Agreement, len(s.agrees)),
	}
	for k, v := range s.members {
		snap.members[k] = v
	}
	for k, v := range s.links {
		if v.MemberID != nil {
			id := *v.MemberID
			v.MemberID = &id
		}
		snap.links[k] = v
	}
	for k, v := range s.agrees {
		snap.agrees[k] = append([]core.Agreement(nil), v...)
	}
	return snap
}

func (s *Store) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = snap.members
	s.links = snap.links
	s.agrees = snap.agrees
}

// --- members ---

func (s *Store) CreateMember(ctx context.Context, m *core.Member, agreements []core.Agreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for _, ex := range s.members {
		if strings.EqualFold(ex.Username, m.Username) {
			return core.ErrConflict
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.members[m.ID] = *m
	s.agrees[m.ID] = append([]core.Agreement(nil), agreements...)
	return nil
}

func (s *Store) GetMemberByID(ctx context.Context, id string) (*core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &m, nil
}

func (s *Store) GetMemberByUsername(ctx context.Context, username string) (*core.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if strings.EqualFold(m.Username, username) {
			out := m
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

// --- links ---

func (s *Store) CreateLink(ctx context.Context, l *core.OAuthLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.links {
		if ex.Sub == l.Sub && ex.Provider == l.Provider {
			return core.ErrConflict
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	s.links[l.ID] = *l
	return nil
}

func (s *Store) GetLinkBySub(ctx context.Context, sub string) (*core.OAuthLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.links {
		if l.Sub == sub {
			return copyLink(l), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) GetLinkBySubAndProvider(ctx context.Context, sub string, p core.ProviderType) (*core.OAuthLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.links {
		if l.Sub == sub && l.Provider == p {
			return copyLink(l), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) GetLinkByRefreshTokenAndProvider(ctx context.Context, refreshToken string, p core.ProviderType) (*core.OAuthLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.links {
		if l.RefreshToken == refreshToken && l.Provider == p {
			return copyLink(l), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) AttachMember(ctx context.Context, linkID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[linkID]
	if !ok || l.MemberID != nil {
		return core.ErrNotFound
	}
	l.MemberID = &memberID
	l.UpdatedAt = time.Now()
	s.links[linkID] = l
	return nil
}

func (s *Store) RotateLinkTokens(ctx context.Context, linkID, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[linkID]
	if !ok {
		return core.ErrNotFound
	}
	l.AccessToken = accessToken
	l.RefreshToken = refreshToken
	l.UpdatedAt = time.Now()
	s.links[linkID] = l
	return nil
}

func copyLink(l core.OAuthLink) *core.OAuthLink {
	if l.MemberID != nil {
		id := *l.MemberID
		l.MemberID = &id
	}
	return &l
}
