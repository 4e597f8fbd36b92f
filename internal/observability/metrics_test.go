package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/vouchers", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	body := scrape(t, m)
	require.Contains(t, body, `meridian_http_requests_total{code="418",route="unknown"} 1`)
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()
	m.VoucherPosted("SALE")
	m.VoucherPosted("SALE")
	m.IntegrityFailure(7)
	m.BalanceCacheMiss()

	body := scrape(t, m)
	require.Contains(t, body, `meridian_vouchers_posted_total{type="SALE"} 2`)
	require.Contains(t, body, `meridian_ledger_integrity_failures_total{company_id="7"} 1`)
	require.Contains(t, body, `meridian_balance_cache_misses_total 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.VoucherPosted("SALE")
	m.IntegrityFailure(1)
	m.BalanceCacheMiss()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
