package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookie names carrying the session tokens.
const (
	AccessCookie  = "access"
	RefreshCookie = "refresh"
	// StateCookie carries the OAuth2 state from the authorization redirect to
	// the code exchange.
	StateCookie = "oauth_state"
)

// StateMaxAge bounds how long a social login may take.
const StateMaxAge = 10 * time.Minute

// CookieConfig controls the attributes of the auth cookies.
type CookieConfig struct {
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps none, lax and strict to their http.SameSite values.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return http.SameSiteNoneMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unknown SameSite mode %q", s)
	}
}

// SetTokens writes both the access and refresh cookies.
func (c CookieConfig) SetTokens(w http.ResponseWriter, pair TokenPair) {
	c.set(w, AccessCookie, pair.Access, c.MaxAge)
	c.set(w, RefreshCookie, pair.Refresh, c.MaxAge)
}

// SetAccess writes only the access cookie.
func (c CookieConfig) SetAccess(w http.ResponseWriter, token string) {
	c.set(w, AccessCookie, token, c.MaxAge)
}

// SetState writes the short-lived OAuth2 state cookie.
func (c CookieConfig) SetState(w http.ResponseWriter, state string) {
	c.set(w, StateCookie, state, StateMaxAge)
}

// ClearState expires the OAuth2 state cookie.
func (c CookieConfig) ClearState(w http.ResponseWriter) {
	c.expire(w, StateCookie)
}

// Clear expires both auth cookies on the client.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	c.expire(w, AccessCookie, RefreshCookie)
}

func (c CookieConfig) expire(w http.ResponseWriter, names ...string) {
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     c.path(),
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   c.Secure,
			HttpOnly: true,
			SameSite: c.SameSite,
		})
	}
}

func (c CookieConfig) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		MaxAge:   int(maxAge.Seconds()),
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: c.SameSite,
	})
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// TokenFromCookie returns the value of the named cookie, or "" if absent.
func TokenFromCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
