package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics.
type Metrics struct {
	handler            http.Handler
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	vouchersPosted     *prometheus.CounterVec
	integrityFailures  *prometheus.CounterVec
	balanceCacheMisses prometheus.Counter
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meridian_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	vouchers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_vouchers_posted_total",
		Help: "Vouchers posted by type.",
	}, []string{"type"})
	integrity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_ledger_integrity_failures_total",
		Help: "Trial balance integrity check failures per company.",
	}, []string{"company_id"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meridian_balance_cache_misses_total",
		Help: "Balance lookups that fell through to the database.",
	})
	registry.MustRegister(requests, duration, vouchers, integrity, cacheMisses)
	return &Metrics{
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:      requests,
		requestDuration:    duration,
		vouchersPosted:     vouchers,
		integrityFailures:  integrity,
		balanceCacheMisses: cacheMisses,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// VoucherPosted counts a successfully committed voucher.
func (m *Metrics) VoucherPosted(voucherType string) {
	if m == nil {
		return
	}
	m.vouchersPosted.WithLabelValues(voucherType).Inc()
}

// IntegrityFailure counts a company whose books failed the trial balance
// invariant. This fires from both the report path and the background scan.
func (m *Metrics) IntegrityFailure(companyID int64) {
	if m == nil {
		return
	}
	m.integrityFailures.WithLabelValues(strconv.FormatInt(companyID, 10)).Inc()
}

// BalanceCacheMiss counts a balance resolution that hit the database.
func (m *Metrics) BalanceCacheMiss() {
	if m == nil {
		return
	}
	m.balanceCacheMisses.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
