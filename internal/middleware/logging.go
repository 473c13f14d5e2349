package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Logging returns a middleware that logs every request once it completes.
// It logs the route, status, user ID and duration; 5xx responses are logged
// at error level and 4xx at warn.
func Logging(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"route", routeTemplate(r),
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if info := getRequestInfo(r.Context()); info != nil {
				attrs = append(attrs, "request_id", info.ID, "user_id", info.UserID)
			}

			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				logger.Error("HTTP request", attrs...)
			case wrapped.statusCode >= http.StatusBadRequest:
				logger.Warn("HTTP request", attrs...)
			default:
				logger.Info("HTTP request", attrs...)
			}
		})
	}
}

// routeTemplate returns the matched mux route template, falling back to the
// raw path for unmatched requests.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
