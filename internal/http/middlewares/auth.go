package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
	"github.com/dropDatabas3/linkjohn/internal/observability/logger"
)

type ctxKeyPrincipal struct{}

// Authenticated valida el Bearer token contra su proveedor de origen y
// deja el Principal resuelto en el contexto. Todo fallo es 401 opaco.
func Authenticated(resolver *auth.Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httperrors.WriteError(r.Context(), w, httperrors.ErrUnauthorized)
				return
			}

			tp, err := resolver.GetProvider(raw)
			if err != nil {
				httperrors.WriteError(r.Context(), w, httperrors.ErrUnauthorized.WithCause(err))
				return
			}

			if !tp.ValidateToken(r.Context(), raw) {
				httperrors.WriteError(r.Context(), w, httperrors.ErrUnauthorized)
				return
			}

			principal, err := tp.Authentication(r.Context(), raw)
			if err != nil {
				httperrors.WriteError(r.Context(), w, httperrors.ErrUnauthorized.WithCause(err))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPrincipal{}, principal)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.MemberID(principal.MemberID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom retorna el Principal autenticado del contexto.
func PrincipalFrom(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal{}).(*auth.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
