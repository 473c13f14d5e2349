// Package handlers exposes the REST JSON API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/httpjson"
	"github.com/mmynk/homebase/internal/metrics"
	"github.com/mmynk/homebase/internal/middleware"
	"github.com/mmynk/homebase/internal/ratelimit"
	"github.com/mmynk/homebase/internal/service"
	"github.com/mmynk/homebase/internal/social"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs.
type Deps struct {
	Tasks     *service.TaskService
	Expenses  *service.ExpenseService
	ShortURLs *service.ShortURLService
	Users     *service.UserService
	Store     Pinger

	Cookies auth.CookieConfig

	// ShortURLLimiter limits POST /shorturls/ per client IP.
	ShortURLLimiter ratelimit.Limiter
	// LoginThrottle slows down credential endpoints.
	LoginThrottle *middleware.LoginThrottle
	// Social holds the providers served under /o/{provider}/.
	Social social.Registry

	// MediaRoot is served read-only under MediaURL when MediaURL is a path.
	MediaRoot string
	MediaURL  string

	AllowedOrigins []string
	Logger         *slog.Logger
}

// Handler holds the services behind the HTTP endpoints.
type Handler struct {
	tasks     *service.TaskService
	expenses  *service.ExpenseService
	shortURLs *service.ShortURLService
	users     *service.UserService
	store     Pinger
	cookies   auth.CookieConfig
	social    social.Registry
	logger    *slog.Logger
}

// NewRouter builds the full HTTP handler: routes, per-route auth and rate
// limiting, and the request ID, CORS, logging and metrics middleware.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		tasks:     d.Tasks,
		expenses:  d.Expenses,
		shortURLs: d.ShortURLs,
		users:     d.Users,
		store:     d.Store,
		cookies:   d.Cookies,
		social:    d.Social,
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger), middleware.Metrics)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	authed := middleware.RequireAuth(d.Users)
	protect := func(fn http.HandlerFunc) http.Handler { return authed(fn) }
	throttle := func(fn http.HandlerFunc) http.Handler {
		if d.LoginThrottle == nil {
			return fn
		}
		return d.LoginThrottle.Handler(fn)
	}
	limitPOST := func(next http.Handler) http.Handler {
		if d.ShortURLLimiter == nil {
			return next
		}
		return middleware.RateLimitPOST(d.ShortURLLimiter, "shorturl")(next)
	}

	// Operational
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if strings.HasPrefix(d.MediaURL, "/") && d.MediaRoot != "" {
		r.PathPrefix(d.MediaURL).Handler(
			http.StripPrefix(d.MediaURL, mediaFileServer(d.MediaRoot)),
		).Methods(http.MethodGet, http.MethodHead)
	}

	// Sessions
	r.Handle("/jwt/create/", throttle(h.login)).Methods(http.MethodPost)
	r.HandleFunc("/jwt/refresh/", h.refresh).Methods(http.MethodPost)
	r.HandleFunc("/jwt/verify/", h.verify).Methods(http.MethodPost)
	r.Handle("/logout/", protect(h.logout)).Methods(http.MethodPost)

	// Accounts
	r.Handle("/users/", throttle(h.register)).Methods(http.MethodPost)
	r.Handle("/users/me/", protect(h.me)).Methods(http.MethodGet)
	r.Handle("/users/me/", protect(h.deleteAccount)).Methods(http.MethodDelete)
	r.Handle("/create/avatar/", protect(h.uploadAvatar)).Methods(http.MethodPost)
	r.Handle("/create/avatar/", protect(h.deleteAvatar)).Methods(http.MethodDelete)

	// Social login
	r.Handle("/o/{provider}/", throttle(h.socialAuthURL)).Methods(http.MethodGet)
	r.Handle("/o/{provider}/", throttle(h.socialLogin)).Methods(http.MethodPost)

	// Tasks
	r.Handle("/tasks/", protect(h.listTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/", protect(h.createTask)).Methods(http.MethodPost)
	for _, p := range withOptionalSlash("/tasks/{id:[0-9]+}") {
		r.Handle(p, protect(h.updateTask)).Methods(http.MethodPut)
		r.Handle(p, protect(h.deleteTask)).Methods(http.MethodDelete)
	}

	// Expenses
	r.Handle("/expenses/", protect(h.listExpenses)).Methods(http.MethodGet)
	r.Handle("/expenses/", protect(h.createExpense)).Methods(http.MethodPost)
	for _, p := range withOptionalSlash("/expenses/{id:[0-9]+}") {
		r.Handle(p, protect(h.updateExpense)).Methods(http.MethodPut)
		r.Handle(p, protect(h.deleteExpense)).Methods(http.MethodDelete)
	}

	// Short URLs. Auth runs before the limiter so anonymous requests do not
	// consume a client's quota.
	r.Handle("/shorturls/", protect(h.listShortURLs)).Methods(http.MethodGet)
	r.Handle("/shorturls/", authed(limitPOST(http.HandlerFunc(h.createShortURL)))).Methods(http.MethodPost)

	// The dual-mode segment: numeric for DELETE, a short code for GET. These
	// catch-all routes must stay last.
	for _, prefix := range []string{"/shorturls", ""} {
		for _, p := range withOptionalSlash(prefix + "/{id:[0-9]+}") {
			r.Handle(p, protect(h.deleteShortURL)).Methods(http.MethodDelete)
		}
		for _, p := range withOptionalSlash(prefix + "/{code}") {
			r.Handle(p, protect(h.resolveShortURL)).Methods(http.MethodGet)
		}
	}

	return middleware.RequestID(middleware.CORS(d.AllowedOrigins)(r))
}

func withOptionalSlash(path string) []string {
	return []string{path, path + "/"}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpjson.Error(w, apperr.NotFound("Not found"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusMethodNotAllowed, httpjson.ErrorBody{
		Error: "Method \"" + r.Method + "\" not allowed",
		Code:  "method_not_allowed",
	})
}
