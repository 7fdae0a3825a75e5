package auth

import (
	"fmt"

	jwtx "github.com/dropDatabas3/linkjohn/internal/jwt"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// Resolver routes an opaque session token to the TokenProvider that
// issued it, so callers can validate or reissue without knowing the
// provider up front.
//
// Dispatch is claim-driven: an explicit "provider" claim wins, otherwise
// the "iss" claim is matched against the issuers each provider declared
// at registration.
type Resolver struct {
	byProvider map[core.ProviderType]TokenProvider
	byIssuer   map[string]core.ProviderType
}

func NewResolver() *Resolver {
	return &Resolver{
		byProvider: make(map[core.ProviderType]TokenProvider),
		byIssuer:   make(map[string]core.ProviderType),
	}
}

// Register binds a TokenProvider and the issuer values that route to it.
// Called at startup for each configured provider.
func (r *Resolver) Register(p TokenProvider, issuers ...string) {
	r.byProvider[p.Provider()] = p
	for _, iss := range issuers {
		r.byIssuer[iss] = p.Provider()
	}
}

// GetProvider parses just enough claims to identify the issuing provider.
// Returns ErrUnsupportedProvider when neither claim resolves.
func (r *Resolver) GetProvider(token string) (TokenProvider, error) {
	claims, err := jwtx.ParseClaims(token)
	if err != nil {
		return nil, err
	}

	if v, ok := claims["provider"].(string); ok && v != "" {
		if p, ok := r.byProvider[core.ProviderType(v)]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, v)
	}

	if iss, ok := claims["iss"].(string); ok && iss != "" {
		if pt, ok := r.byIssuer[iss]; ok {
			return r.byProvider[pt], nil
		}
		return nil, fmt.Errorf("%w: iss=%s", ErrUnsupportedProvider, iss)
	}

	return nil, ErrUnsupportedProvider
}

// ProviderFor returns the TokenProvider bound to a provider type.
func (r *Resolver) ProviderFor(p core.ProviderType) (TokenProvider, bool) {
	tp, ok := r.byProvider[p]
	return tp, ok
}

// Providers returns all registered TokenProviders.
func (r *Resolver) Providers() []TokenProvider {
	out := make([]TokenProvider, 0, len(r.byProvider))
	for _, p := range r.byProvider {
		out = append(out, p)
	}
	return out
}
