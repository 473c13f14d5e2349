package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/ratelimit"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type fakeAuthenticator map[string]*models.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, apperr.Unauthenticated("Token is invalid or expired")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 36, "expected a generated UUID")
}

func TestRequireAuth(t *testing.T) {
	alice := &models.User{ID: 7, Email: "alice@example.com", IsActive: true}
	mw := RequireAuth(fakeAuthenticator{"good": alice})

	var gotID int64
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "good"}) }, http.StatusOK},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, http.StatusOK},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized},
		{"bad token", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "bad"}) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(7), gotID)
			} else {
				assert.Zero(t, gotID)
				assert.Equal(t, string(apperr.CodeUnauthenticated), decodeError(t, rec)["code"])
			}
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func TestRateLimitPOST(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Limit: 2, Window: 100 * time.Second})
	h := RateLimitPOST(limiter, "shorturl")(okHandler)

	post := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/shorturls/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, post("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, post("10.0.0.1:2222").Code, "port must not be part of the key")

	rec := post("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("Retry-After"))
	assert.Equal(t, string(apperr.CodeRateLimited), decodeError(t, rec)["code"])

	assert.Equal(t, http.StatusOK, post("10.0.0.2:1111").Code, "other clients are unaffected")

	// GET is never limited.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/shorturls/", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitPOSTFailsOpen(t *testing.T) {
	h := RateLimitPOST(failingLimiter{}, "shorturl")(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shorturls/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginThrottle(t *testing.T) {
	h := NewLoginThrottle(0.001, 2).Handler(okHandler)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/jwt/create/", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1000", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/tasks/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoggingIncludesUserAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	alice := &models.User{ID: 42, IsActive: true}

	r := mux.NewRouter()
	r.Use(RequestID, Logging(logger))
	protected := r.PathPrefix("/tasks").Subrouter()
	protected.Use(RequireAuth(fakeAuthenticator{"tok": alice}))
	protected.Handle("/{id:[0-9]+}", okHandler).Methods(http.MethodPut)

	req := httptest.NewRequest(http.MethodPut, "/tasks/5", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "HTTP request", entry["msg"])
	assert.Equal(t, "/tasks/{id:[0-9]+}", entry["route"])
	assert.Equal(t, float64(42), entry["user_id"])
	assert.Equal(t, float64(200), entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"no-port", "no-port"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
