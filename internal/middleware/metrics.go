package middleware

import (
	"net/http"
	"time"

	"github.com/mmynk/homebase/internal/metrics"
)

// Metrics records HTTP metrics for each request
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := metrics.TrackInFlight()
		defer done()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		metrics.ObserveRequest(r.Method, routeTemplate(r), wrapped.statusCode, time.Since(start))
	})
}
