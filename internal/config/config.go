package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendLocal    = "local"
)

var ErrMissingRequiredEnv = errors.New("missing required environment variables")

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Backend selection: "supabase" (default) or "local"
	Backend        string
	BackendTimeout time.Duration

	// Supabase
	SupabaseURL           string
	SupabaseAnonKey       string
	SupabaseStorageBucket string

	// Local backend: database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Local backend: security
	JWTSecret string
	JWTExpiry time.Duration

	// Session cookies
	SessionCookieTTL time.Duration

	// Local backend: email
	EmailFrom    string
	ResendAPIKey string

	// Rate limiting (optional, in-memory when empty)
	RedisURL string
	// TrustProxy takes client IPs from X-Forwarded-For. Only set it
	// behind a reverse proxy that appends the peer address.
	TrustProxy bool

	// Observability (optional)
	SentryDSN string

	// Local backend: storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string
	S3PublicURL           string // base URL avatars are served from (CDN or public bucket)
}

// Load reads .env (if present) and the environment. Every missing
// required key is reported in the returned error.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Craftfolio"),
		AppEnv:  required("APP_ENV"), // 'development' or 'production'
		AppURL:  required("APP_URL"),
		Port:    envString("PORT", "8090"),

		Backend:        strings.ToLower(envString("BACKEND", BackendSupabase)),
		BackendTimeout: envDuration("BACKEND_TIMEOUT", 15*time.Second),

		SupabaseStorageBucket: envString("SUPABASE_STORAGE_BUCKET", "portfolio"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/craftfolio.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTExpiry:        envDuration("JWT_EXPIRY", 1*time.Hour),
		SessionCookieTTL: envDuration("SESSION_COOKIE_TTL", 7*24*time.Hour),

		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		RedisURL:   envString("REDIS_URL", ""),
		TrustProxy: envBool("TRUST_PROXY", false),
		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:              envString("S3_REGION", "us-east-1"),
		S3Bucket:              envString("S3_BUCKET", ""),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PublicURL:           envString("S3_PUBLIC_URL", ""),
	}

	switch cfg.Backend {
	case BackendSupabase:
		cfg.SupabaseURL = strings.TrimSuffix(required("SUPABASE_URL"), "/")
		cfg.SupabaseAnonKey = required("SUPABASE_ANON_KEY")
	case BackendLocal:
		cfg.JWTSecret = required("JWT_SECRET")
	default:
		return nil, fmt.Errorf("unknown BACKEND %q (want %q or %q)", cfg.Backend, BackendSupabase, BackendLocal)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if cfg.IsProduction() && cfg.Backend == BackendLocal && cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("production deployment with the local backend requires RESEND_API_KEY")
	}

	return cfg, nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether cookies get the Secure flag. Local http
// development can force it off with COOKIE_SECURE=false.
func (c *Config) SecureCookies() bool {
	return envBool("COOKIE_SECURE", c.IsProduction())
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:     c.AppName,
		AppEnv:      c.AppEnv,
		AppURL:      c.AppURL,
		Port:        c.Port,
		Backend:     c.Backend,
		SupabaseURL: c.SupabaseURL, // Needed for CSP img-src
		S3Endpoint:  c.S3Endpoint,
		S3PublicURL: c.S3PublicURL,
		TrustProxy:  c.TrustProxy,
	}
}
