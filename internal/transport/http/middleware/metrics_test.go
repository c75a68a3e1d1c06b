package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"schoolhr/internal/platform/metrics"
)

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	collector := metrics.New()
	router := chi.NewRouter()
	router.Use(Metrics(collector))
	router.Get("/payroll/payslips/{employeeID}/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payroll/payslips/e1/pdf", nil))

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	want := `schoolhr_http_requests_total{code="200",route="/payroll/payslips/{employeeID}/pdf"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("expected %s in scrape", want)
	}
}
