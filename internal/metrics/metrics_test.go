package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/tasks/", "200"))
	ObserveRequest("get", "/tasks/", http.StatusOK, 10*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/tasks/", "200"))

	if after-before != 1 {
		t.Errorf("requests_total delta = %v, want 1", after-before)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(shortCodeCollisions)
	ShortCodeCollision()
	if got := testutil.ToFloat64(shortCodeCollisions) - before; got != 1 {
		t.Errorf("collisions delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(rateLimitRejections.WithLabelValues("shorturl"))
	RateLimitRejected("shorturl")
	if got := testutil.ToFloat64(rateLimitRejections.WithLabelValues("shorturl")) - before; got != 1 {
		t.Errorf("rejections delta = %v, want 1", got)
	}

	done := TrackInFlight()
	if got := testutil.ToFloat64(httpInFlight); got < 1 {
		t.Errorf("inflight = %v, want >= 1", got)
	}
	done()
}

func TestHandlerExposesMetrics(t *testing.T) {
	RateLimitBackendError()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "homebase_ratelimit_backend_errors_total") {
		t.Error("expected limiter error counter in exposition")
	}
}
