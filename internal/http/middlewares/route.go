package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern retorna el patrón de ruta de chi (post-routing) para no
// explotar la cardinalidad de métricas con paths con parámetros.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
