package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/httpjson"
	"github.com/mmynk/homebase/internal/metrics"
	"github.com/mmynk/homebase/internal/ratelimit"
)

// RateLimitPOST limits POST requests per client IP using limiter; other
// methods pass through untouched. name labels the rejection metric. When the
// limiter backend fails the request is allowed and the error logged.
func RateLimitPOST(limiter ratelimit.Limiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			res, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				metrics.RateLimitBackendError()
				slog.Error("Rate limiter unavailable, allowing request", "limiter", name, "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimitRejected(name)
				slog.Warn("Rate limit exceeded", "limiter", name, "ip", ip, "count", res.Count)
				if secs := int(math.Ceil(res.RetryAfter.Seconds())); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				httpjson.Error(w, apperr.RateLimited("Rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are not
// trusted.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
