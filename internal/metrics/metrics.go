// Package metrics exposes Prometheus metrics for HTTP traffic and ledger
// activity. Ledger counters are fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/middleware"
)

const namespace = "budgetbuddy"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	sharedExpenses   prometheus.Counter
	settlements      *prometheus.CounterVec
	settledAmount    *prometheus.CounterVec
	signFlips        prometheus.Counter
	personalExpenses prometheus.Counter
	savingsDeposits  prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sharedExpenses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shared_expenses_recorded_total",
			Help:      "Shared expenses committed to a ledger.",
		}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlements by direction.",
		}, []string{"direction"}),
		settledAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_minor_units_total",
			Help:      "Sum of settled amounts in minor currency units, by direction.",
		}, []string{"direction"}),
		signFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_sign_flips_total",
			Help:      "Ledger entries whose balance changed sides.",
		}),
		personalExpenses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "personal_expenses_total",
			Help:      "Personal expenses logged.",
		}),
		savingsDeposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "savings_deposits_total",
			Help:      "Deposits into savings goals.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.sharedExpenses,
		m.settlements,
		m.settledAmount,
		m.signFlips,
		m.personalExpenses,
		m.savingsDeposits,
	)
	return m
}

// Subscribe counts domain events published on bus.
func (m *Metrics) Subscribe(bus *events.Bus) {
	bus.Subscribe(m.observe)
}

func (m *Metrics) observe(_ context.Context, e events.Event) {
	switch e := e.(type) {
	case events.ExpenseRecorded:
		m.sharedExpenses.Inc()
	case events.EntryChanged:
		if e.Flipped() {
			m.signFlips.Inc()
		}
	case events.Settled:
		dir := string(e.Event.Direction)
		m.settlements.WithLabelValues(dir).Inc()
		m.settledAmount.WithLabelValues(dir).Add(float64(e.Event.Amount))
	case events.PersonalExpenseAdded:
		m.personalExpenses.Inc()
	case events.SavingsUpdated:
		if e.Added > 0 {
			m.savingsDeposits.Inc()
		}
	}
}

// Instrument records request counts and latency. It must wrap the ServeMux
// directly so the matched pattern is visible after the call.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
