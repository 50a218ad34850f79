package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/jwtx"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrMissingSecret = errors.New("config: JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	ErrSharedSecret  = errors.New("config: access and refresh secrets must differ")
)

type Config struct {
	AccessSecret  []byte        // Required: HS256 secret for access tokens
	RefreshSecret []byte        // Required: HS256 secret for refresh tokens, distinct from AccessSecret
	AccessTTL     time.Duration // Access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Refresh token lifetime (default: 7d)
	Issuer        string        // iss claim (default: tenders-watcher)

	AllowedOrigins  []string // CORS allow list, localhost defaults plus ALLOWED_ORIGINS
	CookieTransport bool     // Also carry the session in httpOnly cookies (default: false)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./tenders.db)
	DatabaseURL    string // Postgres DSN, required with the postgres driver
	PepperFile     string // Password pepper file, generated when absent (default: ./pepper)

	// Optional account upserted at startup.
	DefaultEmail    string
	DefaultUser     string
	DefaultPassword string

	BoampBaseURL      string        // BOAMP dataset URL
	UpstreamTimeout   time.Duration // Per call upstream timeout (default: 15s)
	EnrichPolicy      boamp.Policy  // fail_fast or isolate (default: fail_fast)
	EnrichConcurrency int           // Parallel linked lookups (default: 4)

	MetricsEnabled bool // Serve /metrics (default: true)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	RateLimits httpx.RateLimitProfiles
}

// LoadConfig reads the environment once. It fails when a JWT secret is
// missing, when both secrets are equal, or when a value cannot be parsed.
func LoadConfig() (Config, error) {
	cfg := Config{
		AccessTTL:  getEnvDurationOrDefault("JWT_ACCESS_EXPIRES", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("JWT_REFRESH_EXPIRES", jwtx.DefaultRefreshTokenTTL),
		Issuer:     getEnvOrDefault("JWT_ISSUER", jwtx.DefaultIssuer),

		AllowedOrigins:  httpx.MergeOrigins(httpx.DefaultAllowedOrigins, os.Getenv("ALLOWED_ORIGINS")),
		CookieTransport: getEnvBoolOrDefault("COOKIE_TRANSPORT", false),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "tenders.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),

		DefaultEmail:    os.Getenv("APP_DEFAULT_EMAIL"),
		DefaultUser:     os.Getenv("APP_DEFAULT_USER"),
		DefaultPassword: os.Getenv("APP_DEFAULT_PASSWORD"),

		BoampBaseURL:      getEnvOrDefault("BOAMP_BASE_URL", boamp.DefaultBaseURL),
		UpstreamTimeout:   getEnvDurationOrDefault("UPSTREAM_TIMEOUT", boamp.DefaultTimeout),
		EnrichConcurrency: getEnvIntOrDefault("ENRICH_CONCURRENCY", 4),

		MetricsEnabled: getEnvBoolOrDefault("METRICS_ENABLED", true),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		RateLimits: httpx.RateLimitProfilesFromEnv(),
	}

	var err error
	if cfg.AccessSecret, err = loadSecret("JWT_ACCESS_SECRET"); err != nil {
		return Config{}, err
	}
	if cfg.RefreshSecret, err = loadSecret("JWT_REFRESH_SECRET"); err != nil {
		return Config{}, err
	}
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return Config{}, ErrMissingSecret
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return Config{}, ErrSharedSecret
	}

	if cfg.EnrichPolicy, err = boamp.ParsePolicy(os.Getenv("ENRICH_POLICY")); err != nil {
		return Config{}, fmt.Errorf("config: ENRICH_POLICY: %w", err)
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("config: DATABASE_URL is required with the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// loadSecret reads key, or the file named by key_FILE when key is unset.
// Trailing newlines in the file are dropped.
func loadSecret(key string) ([]byte, error) {
	if v := os.Getenv(key); v != "" {
		return []byte(v), nil
	}
	path := os.Getenv(key + "_FILE")
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s_FILE: %w", key, err)
	}
	return []byte(strings.TrimRight(string(b), "\r\n")), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, ok := parseDuration(value); ok {
		return d
	}

	return defaultValue
}

// parseDuration accepts Go durations ("15m", "1h30m"), whole days ("7d")
// and bare integers as minutes.
func parseDuration(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour, true
		}
	}

	if minutes, err := strconv.Atoi(s); err == nil {
		return time.Duration(minutes) * time.Minute, true
	}

	return 0, false
}
