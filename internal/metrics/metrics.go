// Package metrics exposes Prometheus counters for the auth core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	AuthSuccess  prometheus.Counter
	AuthFailure  *prometheus.CounterVec
	AuthzDenials *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		AuthSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_auth_success_total",
			Help: "Successful authentications.",
		}),
		AuthFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_auth_failure_total",
			Help: "Failed authentications by error code.",
		}, []string{"code"}),
		AuthzDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_authz_denied_total",
			Help: "Authorization denials by module and action.",
		}, []string{"module", "action"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthSuccess,
		m.AuthFailure,
		m.AuthzDenials,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
