// Package token guarda el refresh token vigente de cada member.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/linkjohn/internal/cache"
)

const keyPrefix = "refresh:"

// RefreshStore mapea member id → refresh token vigente.
// Semántica de overwrite por key: guardar un token nuevo supersede al
// anterior, que deja de ser rotable. A lo sumo un token vivo por member.
type RefreshStore struct {
	cache cache.Client
	ttl   time.Duration
}

// NewRefreshStore crea el store sobre un cache.Client.
// ttl acota la vida del registro; 0 = sin expiración.
func NewRefreshStore(c cache.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{cache: c, ttl: ttl}
}

// Save registra el refresh token vigente para un member (overwrite).
func (s *RefreshStore) Save(ctx context.Context, memberID, refreshToken string) error {
	return s.cache.Set(ctx, keyPrefix+memberID, refreshToken, s.ttl)
}

// Lookup retorna el token vigente, o "" si no hay registro.
func (s *RefreshStore) Lookup(ctx context.Context, memberID string) (string, error) {
	v, err := s.cache.Get(ctx, keyPrefix+memberID)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	return v, err
}
