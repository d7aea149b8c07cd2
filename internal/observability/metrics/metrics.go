// Package metrics exposes billing pipeline counters on a dedicated
// prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(New),
)

type Metrics struct {
	registry *prometheus.Registry

	InvoicesIssued     *prometheus.CounterVec
	ArtifactsDegraded  prometheus.Counter
	VersionConflicts   prometheus.Counter
	BillingFailures    prometheus.Counter
	GeneratorFallbacks prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		InvoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tably_invoices_issued_total",
			Help: "Invoices issued, labelled by generation path.",
		}, []string{"generator"}),
		ArtifactsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tably_invoice_artifacts_degraded_total",
			Help: "Invoices stored without an artifact after an upload failure.",
		}),
		VersionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tably_order_version_conflicts_total",
			Help: "Optimistic-concurrency conflicts on order mutations.",
		}),
		BillingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tably_billing_failures_total",
			Help: "Billing runs that failed after exhausting retries.",
		}),
		GeneratorFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tably_generator_fallbacks_total",
			Help: "Invoice generations that fell back to local computation.",
		}),
	}
	registry.MustRegister(
		m.InvoicesIssued,
		m.ArtifactsDegraded,
		m.VersionConflicts,
		m.BillingFailures,
		m.GeneratorFallbacks,
	)
	return m
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
