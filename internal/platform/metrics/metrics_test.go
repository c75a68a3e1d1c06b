package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollectorExposesDomainCounters(t *testing.T) {
	c := New()
	c.Record("/api/v1/payroll/bank-file", 200, 15*time.Millisecond)
	c.Reconciled("review")
	c.Approved(true)
	c.Approved(false)
	c.Derived("bankfile", nil)
	c.Derived("payslips", errors.New("boom"))
	c.BankFileRows(3, 1)

	body := scrape(t, c)
	for _, want := range []string{
		`schoolhr_http_requests_total{code="200",route="/api/v1/payroll/bank-file"} 1`,
		`schoolhr_attendance_reconciliations_total{view="review"} 1`,
		`schoolhr_attendance_approvals_total{outcome="approved"} 1`,
		`schoolhr_attendance_approvals_total{outcome="noop"} 1`,
		`schoolhr_payroll_derivations_total{export="bankfile",outcome="ok"} 1`,
		`schoolhr_payroll_derivations_total{export="payslips",outcome="error"} 1`,
		`schoolhr_bank_file_rows_total{kind="payable"} 3`,
		`schoolhr_bank_file_rows_total{kind="skipped"} 1`,
	} {
		assert.True(t, strings.Contains(body, want), "missing %s", want)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record("/", 200, time.Millisecond)
	c.Reconciled("monthly")
	c.Approved(true)
	c.Derived("payslips", nil)
	c.BankFileRows(1, 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Approved(true)
	assert.NotContains(t, scrape(t, b), `schoolhr_attendance_approvals_total{outcome="approved"} 1`)
}
