package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/httpjson"
	"github.com/mmynk/homebase/internal/metrics"
)

// maxThrottleKeys bounds memory; the table is reset when exceeded.
const maxThrottleKeys = 10000

// LoginThrottle applies a per-IP token bucket to credential endpoints to slow
// down password guessing.
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLoginThrottle allows perSecond sustained requests per IP with the given burst.
func NewLoginThrottle(perSecond float64, burst int) *LoginThrottle {
	return &LoginThrottle{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (t *LoginThrottle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[key]
	if !ok {
		if len(t.limiters) >= maxThrottleKeys {
			t.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(t.rate, t.burst)
		t.limiters[key] = l
	}
	return l
}

// Handler returns the throttling middleware handler
func (t *LoginThrottle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !t.limiter(ip).Allow() {
			metrics.RateLimitRejected("login")
			slog.Warn("Login throttled", "ip", ip)
			w.Header().Set("Retry-After", retryAfterSeconds(t.rate))
			httpjson.Error(w, apperr.RateLimited("Too many login attempts, try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds is the time for one token to refill, at least one second.
func retryAfterSeconds(limit rate.Limit) string {
	secs := 1
	if limit > 0 {
		secs = max(1, int(math.Ceil(1/float64(limit))))
	}
	return strconv.Itoa(secs)
}
