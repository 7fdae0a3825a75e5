package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth-flow Prometheus metrics. Standalone package to avoid import
// cycles between the service and HTTP layers.

var (
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Logins federados por proveedor y resultado",
	}, []string{"provider", "result"}) // result: ok|signup_required|error

	Signups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_signups_total",
		Help: "Signups completados por proveedor y resultado",
	}, []string{"provider", "result"})

	Reissues = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_reissues_total",
		Help: "Rotaciones de refresh token por proveedor y resultado",
	}, []string{"provider", "result"})
)

// RegisterAuth registra las métricas de auth en el registry dado
// (default si es nil). Idempotente.
func RegisterAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Logins, Signups, Reissues} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
