package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/history/{id}", func(w http.ResponseWriter, req *http.Request) {
		ObserveHTTP(req, http.StatusNotFound, 5*time.Millisecond)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/history/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/history/abc", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/history/{id}", "404"))
	if after-before != 1 {
		t.Fatalf("counter delta = %v", after-before)
	}
}

func TestObserveHTTP_WithoutRouter(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "unmatched", "200"))
	ObserveHTTP(httptest.NewRequest(http.MethodPost, "/x", nil), 200, time.Millisecond)
	if testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "unmatched", "200"))-before != 1 {
		t.Fatalf("unmatched route not counted")
	}
}

func TestObserveGeneration_Outcome(t *testing.T) {
	ObserveGeneration("gemini", false, nil, time.Second)
	ObserveGeneration("gemini", true, errors.New("x"), time.Second)
	if n := testutil.CollectAndCount(GenerationDuration); n < 2 {
		t.Fatalf("series = %d", n)
	}
}

func TestHandler_Exposes(t *testing.T) {
	RateLimitedTotal.Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "codeexplainer_explain_rate_limited_total") {
		t.Fatalf("metric missing from exposition")
	}
}
