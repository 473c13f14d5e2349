package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/avatar"
	"github.com/mmynk/homebase/internal/config"
	"github.com/mmynk/homebase/internal/handlers"
	"github.com/mmynk/homebase/internal/middleware"
	"github.com/mmynk/homebase/internal/ratelimit"
	"github.com/mmynk/homebase/internal/service"
	"github.com/mmynk/homebase/internal/storage/sqlstore"
	"github.com/mmynk/homebase/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load(getEnv("ENV_FILE", ".env"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	limiter, closeLimiter, err := newShortURLLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := service.NewUserService(
		store,
		auth.NewPasswordAuthenticator(store),
		tokens,
		service.AvatarConfig{
			Store:    avatar.NewStore(cfg.MediaRoot),
			MediaURL: cfg.MediaURL,
			MaxBytes: cfg.AvatarMaxBytes,
		},
		logger,
	)

	router := handlers.NewRouter(handlers.Deps{
		Tasks:           service.NewTaskService(store),
		Expenses:        service.NewExpenseService(store),
		ShortURLs:       service.NewShortURLService(store),
		Users:           users,
		Store:           store,
		Cookies:         cfg.Cookies(),
		ShortURLLimiter: limiter,
		Social:          cfg.SocialProviders(),
		LoginThrottle:   middleware.NewLoginThrottle(cfg.LoginRatePerSecond, cfg.LoginRateBurst),
		MediaRoot:       cfg.MediaRoot,
		MediaURL:        cfg.MediaURL,
		AllowedOrigins:  cfg.AllowedOrigins(),
		Logger:          logger,
	})

	// h2c serves HTTP/2 without TLS behind a terminating proxy.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newShortURLLimiter uses Redis when REDIS_URL is set so that every replica
// shares counters, and an in-process limiter otherwise.
func newShortURLLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, func(), error) {
	limits := ratelimit.Config{Limit: cfg.ShortURLRateLimit, Window: cfg.ShortURLRateWindow}

	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, rate limit counters are per process")
		return ratelimit.NewMemoryLimiter(limits), func() {}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := ratelimit.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Rate limiter using redis")
	return ratelimit.NewRedisLimiter(client, limits), func() { client.Close() }, nil
}
