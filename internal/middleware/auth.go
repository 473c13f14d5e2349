package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/httpjson"
	"github.com/mmynk/homebase/internal/models"
)

// TokenAuthenticator resolves an access token to an active user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// RequireAuth returns a middleware that validates the access token and requires authentication.
// The token is read from the access cookie, or from an "Authorization: Bearer"
// header for non-browser clients. The resolved user is added to the request context.
func RequireAuth(authenticator TokenAuthenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				httpjson.Error(w, apperr.Unauthenticated("Authentication credentials were not provided"))
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				httpjson.Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AccessToken extracts the access token from the cookie or the
// Authorization header, preferring the cookie.
func AccessToken(r *http.Request) string {
	if token := auth.TokenFromCookie(r, auth.AccessCookie); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
