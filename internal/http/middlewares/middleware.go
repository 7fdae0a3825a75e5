// Package middlewares agrupa los middlewares HTTP transversales.
package middlewares

import "net/http"

// Middleware envuelve un handler.
type Middleware func(http.Handler) http.Handler
