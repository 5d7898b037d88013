// ABOUTME: Configuration loader for the agent dashboard API
// ABOUTME: Loads settings from environment variables (and an optional .env file) with defaults

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig marks configuration problems that must stop the process at startup.
var ErrConfig = errors.New("invalid configuration")

type Config struct {
	// Server
	Port               string
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	HealthCacheTTL     time.Duration
	SeedDemoData       bool

	// Session auth
	AuthEnabled    bool
	SessionSecret  string
	CookieName     string
	CookieSameSite http.SameSite
	CookieSecure   bool          // force Secure even when the connection is plain HTTP
	SessionTTL     time.Duration // lifetime of tokens minted by `session issue`

	// Mutation authorization
	MutationSecret       string
	MutationSecretHeader string
	OperatorHeader       string

	// Operator fallbacks
	DefaultStatusOperator   string
	DefaultDeliveryOperator string

	// Rate Limiting
	RateLimitEnabled       bool
	RateLimitMutations     int           // max mutations per window per key (default: 30)
	RateLimitWindow        time.Duration // sliding window length (default: 60s)
	RateLimitSweepInterval time.Duration // idle bucket sweep period (default: 5m)
}

// MutationsConfigured reports whether a mutation secret is set. Without one every
// write is rejected.
func (c *Config) MutationsConfigured() bool {
	return c.MutationSecret != ""
}

// Load reads the environment (after merging an optional .env file) and validates it.
// The returned error wraps ErrConfig.
func Load() (*Config, error) {
	loadDotEnv()

	sameSite, err := parseSameSite(getEnv("SESSION_COOKIE_SAMESITE", "lax"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		HealthCacheTTL:     getEnvDuration("HEALTH_CACHE_TTL", 5*time.Second),
		SeedDemoData:       getEnvBool("SEED_DEMO_DATA", false),

		AuthEnabled:    getEnvBool("AUTH_ENABLED", false),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		CookieName:     getEnv("SESSION_COOKIE_NAME", "mc_session"),
		CookieSameSite: sameSite,
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		SessionTTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		MutationSecret:       os.Getenv("MUTATION_SECRET"),
		MutationSecretHeader: getEnv("MUTATION_SECRET_HEADER", "X-Mission-Control-Secret"),
		OperatorHeader:       getEnv("OPERATOR_HEADER", "X-Operator"),

		DefaultStatusOperator:   getEnv("DEFAULT_STATUS_OPERATOR", "garry"),
		DefaultDeliveryOperator: getEnv("DEFAULT_DELIVERY_OPERATOR", "notification-worker"),

		RateLimitEnabled:       getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitMutations:     getEnvInt("RATE_LIMIT_MUTATIONS", 30),
		RateLimitWindow:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitSweepInterval: getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	// Silently running unauthenticated would be worse than refusing to start.
	if c.AuthEnabled && c.SessionSecret == "" {
		return fmt.Errorf("%w: SESSION_SECRET is required when AUTH_ENABLED=true", ErrConfig)
	}
	if c.RateLimitMutations < 1 || c.RateLimitMutations > 10000 {
		return fmt.Errorf("%w: RATE_LIMIT_MUTATIONS must be between 1 and 10000, got %d", ErrConfig, c.RateLimitMutations)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive, got %s", ErrConfig, c.RateLimitWindow)
	}
	if c.RateLimitSweepInterval <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_SWEEP_INTERVAL must be positive, got %s", ErrConfig, c.RateLimitSweepInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: SESSION_TTL must be positive, got %s", ErrConfig, c.SessionTTL)
	}
	if c.CookieName == "" || c.MutationSecretHeader == "" || c.OperatorHeader == "" {
		return fmt.Errorf("%w: cookie and header names must not be empty", ErrConfig)
	}
	return nil
}

// loadOnce memoizes the first Load, including its error.
var loadOnce = sync.OnceValues(Load)

// Get returns the process-wide configuration, reading the environment only on
// the first call. Callers treat an error as fatal.
func Get() (*Config, error) {
	return loadOnce()
}

// loadDotEnv merges ENV_FILE (default .env) into the environment. Variables already
// set in the real environment win; a missing file is not an error.
func loadDotEnv() {
	path := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Ignoring unreadable env file", "path", path, "error", err)
		}
		return
	}
	slog.Debug("Loaded env file", "path", path)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("%w: SESSION_COOKIE_SAMESITE must be lax, strict or none, got %q", ErrConfig, value)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
