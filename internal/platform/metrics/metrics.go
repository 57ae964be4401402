// Package metrics registra los contadores Prometheus del servicio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petvax"

// Metrics agrupa los collectors. Cada router crea el suyo (registry propio) para que
// los tests puedan levantar varios servidores sin colisiones de registro.
type Metrics struct {
	registry *prometheus.Registry

	AuthzDecisions     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
}

// New crea un registry con las métricas del proceso + las del dominio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Authorization decisions by policy, entity kind, operation and result.",
		}, []string{"policy", "kind", "operation", "decision"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected writes by entity and field.",
		}, []string{"entity", "field"}),
	}
	reg.MustRegister(m.AuthzDecisions, m.ValidationFailures)

	return m
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveValidation cuenta un rechazo por cada campo reportado.
// Acepta nil para que los services funcionen sin métricas (tests).
func (m *Metrics) ObserveValidation(entity string, fields map[string]string) {
	if m == nil {
		return
	}
	for field := range fields {
		m.ValidationFailures.WithLabelValues(entity, field).Inc()
	}
}
