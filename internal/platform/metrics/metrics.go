package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build as many as they like.
// Every method is safe on a nil receiver.
type Collector struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reconciliations *prometheus.CounterVec
	approvals       *prometheus.CounterVec
	derivations     *prometheus.CounterVec
	bankFileRows    *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolhr_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schoolhr_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolhr_attendance_reconciliations_total",
			Help: "Attendance months reconciled, by view.",
		}, []string{"view"}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolhr_attendance_approvals_total",
			Help: "Month approval requests by outcome.",
		}, []string{"outcome"}),
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolhr_payroll_derivations_total",
			Help: "Payroll derivations by export and outcome.",
		}, []string{"export", "outcome"}),
		bankFileRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolhr_bank_file_rows_total",
			Help: "Bank file rows written or skipped.",
		}, []string{"kind"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requestsTotal,
		c.requestDuration,
		c.reconciliations,
		c.approvals,
		c.derivations,
		c.bankFileRows,
	)
	c.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return c.handler
}

func (c *Collector) Registerer() prometheus.Registerer {
	if c == nil {
		return prometheus.DefaultRegisterer
	}
	return c.registry
}

func (c *Collector) Record(route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Reconciled counts one reconciliation of a month, view is review or a report mode.
func (c *Collector) Reconciled(view string) {
	if c == nil {
		return
	}
	c.reconciliations.WithLabelValues(view).Inc()
}

func (c *Collector) Approved(changed bool) {
	if c == nil {
		return
	}
	outcome := "noop"
	if changed {
		outcome = "approved"
	}
	c.approvals.WithLabelValues(outcome).Inc()
}

func (c *Collector) Derived(export string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.derivations.WithLabelValues(export, outcome).Inc()
}

func (c *Collector) BankFileRows(payable, skipped int) {
	if c == nil {
		return
	}
	c.bankFileRows.WithLabelValues("payable").Add(float64(payable))
	c.bankFileRows.WithLabelValues("skipped").Add(float64(skipped))
}
