package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newMetricsEcho(m *Metrics) *echo.Echo {
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/tasks/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "task not found")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("store unavailable")
	})
	e.GET("/metrics", m.Handler())
	return e
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := NewMetrics("careops", "test")
	e := newMetricsEcho(m)

	serve(e, "/tasks/a")
	serve(e, "/tasks/b")
	serve(e, "/tasks/missing")

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/tasks/:id", "200")); got != 2 {
		t.Errorf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/tasks/:id", "404")); got != 1 {
		t.Errorf("expected 1 not-found request, got %v", got)
	}
	if got := testutil.ToFloat64(m.active); got != 0 {
		t.Errorf("expected no active requests after completion, got %v", got)
	}
}

func TestMiddleware_ServerError(t *testing.T) {
	m := NewMetrics("careops", "test")
	e := newMetricsEcho(m)

	serve(e, "/boom")
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/boom", "500")); got != 1 {
		t.Errorf("expected 1 server error, got %v", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := NewMetrics("careops", "1.2.3")
	e := newMetricsEcho(m)
	serve(e, "/tasks/a")

	rec := serve(e, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`careops_http_requests_total{code="200",method="GET",route="/tasks/:id"} 1`,
		"careops_http_request_duration_seconds_bucket",
		`careops_build_info{version="1.2.3"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}

func TestNewMetrics_Independent(t *testing.T) {
	// separate registries must not panic on duplicate registration
	NewMetrics("careops", "a")
	NewMetrics("careops", "b")
}
