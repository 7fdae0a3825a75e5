// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/linkjohn/internal/auth"
	"github.com/dropDatabas3/linkjohn/internal/cache"
	oauthctl "github.com/dropDatabas3/linkjohn/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/linkjohn/internal/http/errors"
	"github.com/dropDatabas3/linkjohn/internal/http/middlewares"
	"github.com/dropDatabas3/linkjohn/internal/rate"
	"github.com/dropDatabas3/linkjohn/internal/store/core"
)

// Deps son las dependencias del router.
type Deps struct {
	OAuth    *oauthctl.Controller
	Resolver *auth.Resolver
	Limiter  rate.Limiter // nil desactiva rate limiting
	Repo     core.Repository
	Cache    cache.Client
	Metrics  http.Handler // nil desactiva /metrics
}

// New construye el router con middlewares globales y rutas versionadas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.RequestID)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Recover)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(req.Context(), w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httperrors.WriteError(req.Context(), w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", healthz(d.Repo, d.Cache))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v2", func(v2 chi.Router) {
		v2.Route("/oauth/{provider}", func(p chi.Router) {
			if d.Limiter != nil {
				p.Use(middlewares.RateLimit(d.Limiter))
			}
			p.Post("/login", d.OAuth.Login)
			p.Post("/signup", d.OAuth.Signup)
		})

		v2.Route("/auth", func(a chi.Router) {
			a.Post("/refresh", d.OAuth.Refresh)
			a.With(middlewares.Authenticated(d.Resolver)).Get("/me", d.OAuth.Me)
		})
	})

	return r
}

// healthz: vivo si el store y el cache responden.
func healthz(repo core.Repository, c cache.Client) http.HandlerFunc {
	type health struct {
		Status string `json:"status"`
		Store  string `json:"store"`
		Cache  string `json:"cache"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h := health{Status: "ok", Store: "ok", Cache: "ok"}
		status := http.StatusOK

		if err := repo.Ping(r.Context()); err != nil {
			h.Status, h.Store = "degraded", err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Ping(r.Context()); err != nil {
			h.Status, h.Cache = "degraded", err.Error()
			status = http.StatusServiceUnavailable
		}

		httperrors.WriteJSON(w, status, h)
	}
}
