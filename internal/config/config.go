// Package config loads homebase settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/social"
)

// MinSecretLen is the shortest accepted JWT signing secret.
const MinSecretLen = 32

// Config holds every runtime setting. Field tags name the environment
// variable and its default.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	DBDriver string `env:"DB_DRIVER,default=sqlite"`
	DBDSN    string `env:"DB_DSN,default=./data/homebase.db"`
	RedisURL string `env:"REDIS_URL"`

	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=5m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=24h"`

	CookieMaxAge   time.Duration `env:"AUTH_COOKIE_MAX_AGE,default=24h"`
	CookiePath     string        `env:"AUTH_COOKIE_PATH,default=/"`
	CookieSecure   bool          `env:"AUTH_COOKIE_SECURE,default=true"`
	CookieSameSite string        `env:"AUTH_COOKIE_SAMESITE,default=none"`

	ShortURLRateLimit  int           `env:"SHORTURL_RATE_LIMIT,default=2"`
	ShortURLRateWindow time.Duration `env:"SHORTURL_RATE_WINDOW,default=100s"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND,default=1"`
	LoginRateBurst     int     `env:"LOGIN_RATE_BURST,default=5"`

	MediaRoot      string `env:"MEDIA_ROOT,default=./media"`
	MediaURL       string `env:"MEDIA_URL,default=/media/"`
	AvatarMaxBytes int64  `env:"AVATAR_MAX_BYTES,default=5242880"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	GoogleClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	OAuthRedirectURL   string `env:"OAUTH_REDIRECT_URL"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then decodes Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	cfg.MediaURL = normalizeMediaURL(cfg.MediaURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLen))
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if _, err := auth.ParseSameSite(c.CookieSameSite); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_COOKIE_SAMESITE: %w", err))
	}
	if c.ShortURLRateLimit <= 0 || c.ShortURLRateWindow <= 0 {
		errs = append(errs, errors.New("SHORTURL_RATE_LIMIT and SHORTURL_RATE_WINDOW must be positive"))
	}
	if c.LoginRatePerSecond <= 0 || c.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_SECOND and LOGIN_RATE_BURST must be positive"))
	}
	if c.AvatarMaxBytes <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_BYTES must be positive"))
	}
	if c.GoogleClientID != "" && (c.GoogleClientSecret == "" || c.OAuthRedirectURL == "") {
		errs = append(errs, errors.New("OAUTH_GOOGLE_CLIENT_SECRET and OAUTH_REDIRECT_URL are required with OAUTH_GOOGLE_CLIENT_ID"))
	}

	return errors.Join(errs...)
}

// Cookies returns the auth cookie attributes. Validate must have passed.
func (c *Config) Cookies() auth.CookieConfig {
	sameSite, err := auth.ParseSameSite(c.CookieSameSite)
	if err != nil {
		sameSite = http.SameSiteNoneMode
	}
	return auth.CookieConfig{
		Path:     c.CookiePath,
		MaxAge:   c.CookieMaxAge,
		Secure:   c.CookieSecure,
		SameSite: sameSite,
	}
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// SocialProviders returns the configured social login providers. It is
// empty when no client ID is set.
func (c *Config) SocialProviders() social.Registry {
	reg := social.Registry{}
	if c.GoogleClientID != "" {
		reg.Add(social.Google(c.GoogleClientID, c.GoogleClientSecret, c.OAuthRedirectURL))
	}
	return reg
}

func normalizeMediaURL(u string) string {
	if u == "" {
		return "/media/"
	}
	if !strings.HasPrefix(u, "/") && !strings.Contains(u, "://") {
		u = "/" + u
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
