package middleware

import (
	"net/http"
	"regexp"
)

// Accept client supplied IDs only when they are short and printable.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags every request with an ID, reusing a well-formed incoming
// X-Request-ID header or generating a UUID, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = ""
		}

		ctx, info := withRequestInfo(r.Context(), id)
		w.Header().Set(RequestIDHeader, info.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
