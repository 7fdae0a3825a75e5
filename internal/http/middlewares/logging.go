package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/linkjohn/internal/metrics"
	"github.com/dropDatabas3/linkjohn/internal/observability/logger"
)

// statusRecorder captura el status code escrito por el handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging inyecta un logger scoped al request en el contexto, loguea el
// access log al terminar y alimenta las métricas HTTP.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		reqLog := logger.L().With(
			logger.RequestID(RequestIDFrom(r.Context())),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
		ctx := logger.ToContext(r.Context(), reqLog)

		next.ServeHTTP(rec, r.WithContext(ctx))

		dur := time.Since(start)
		reqLog.Info("http request",
			logger.Status(rec.status),
			logger.Duration(dur),
			logger.ClientIP(clientIP(r)),
		)
		metrics.ObserveRequest(r.Method, routePattern(r), rec.status, dur)
	})
}

// clientIP prefiere X-Forwarded-For (primer hop) sobre RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
