// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "simplifly"

// Metrics holds the collectors recorded by the service layer. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	ticketsCreated    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	invoicesGenerated *prometheus.CounterVec
	invoicedHours     prometheus.Histogram
	invitesExpired    prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tickets",
			Name:      "created_total",
			Help:      "Tickets created, labeled by ticket type",
		}, []string{"type"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tickets",
			Name:      "status_transitions_total",
			Help:      "Ticket status changes, labeled by target status",
		}, []string{"status"}),
		invoicesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "invoices_generated_total",
			Help:      "Invoices generated, labeled by scope",
		}, []string{"scope"}),
		invoicedHours: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "invoice_hours",
			Help:      "Total hours per generated invoice",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160, 320},
		}),
		invitesExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invites",
			Name:      "expired_total",
			Help:      "Pending invites rejected by the expiry sweep",
		}),
	}
}

func (m *Metrics) TicketCreated(ticketType string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(ticketType).Inc()
}

func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) InvoiceGenerated(scope string, hours float64) {
	if m == nil {
		return
	}
	m.invoicesGenerated.WithLabelValues(scope).Inc()
	m.invoicedHours.Observe(hours)
}

func (m *Metrics) InvitesExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.invitesExpired.Add(float64(n))
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
