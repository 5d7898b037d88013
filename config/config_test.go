package config

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Cleanup(withCleanEnv(t, nil))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.AuthEnabled {
		t.Error("Expected auth disabled by default")
	}
	if cfg.CookieName != "mc_session" {
		t.Errorf("Expected cookie name mc_session, got %s", cfg.CookieName)
	}
	if cfg.CookieSameSite != http.SameSiteLaxMode {
		t.Errorf("Expected SameSite=Lax, got %v", cfg.CookieSameSite)
	}
	if cfg.MutationSecretHeader != "X-Mission-Control-Secret" {
		t.Errorf("Expected default mutation header, got %s", cfg.MutationSecretHeader)
	}
	if cfg.OperatorHeader != "X-Operator" {
		t.Errorf("Expected default operator header, got %s", cfg.OperatorHeader)
	}
	if cfg.DefaultStatusOperator != "garry" {
		t.Errorf("Expected status fallback garry, got %s", cfg.DefaultStatusOperator)
	}
	if cfg.DefaultDeliveryOperator != "notification-worker" {
		t.Errorf("Expected delivery fallback notification-worker, got %s", cfg.DefaultDeliveryOperator)
	}
	if !cfg.RateLimitEnabled || cfg.RateLimitMutations != 30 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("Unexpected rate limit defaults: enabled=%v max=%d window=%s",
			cfg.RateLimitEnabled, cfg.RateLimitMutations, cfg.RateLimitWindow)
	}
	if cfg.MutationsConfigured() {
		t.Error("Expected mutations unconfigured without MUTATION_SECRET")
	}
}

func TestLoadConfig_AuthEnabledWithoutSecret(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"AUTH_ENABLED": "true",
	}))

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for AUTH_ENABLED without SESSION_SECRET")
	}
	if !errors.Is(err, ErrConfig) {
		t.Errorf("Expected ErrConfig, got %v", err)
	}
}

func TestLoadConfig_AuthEnabledWithSecret(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"AUTH_ENABLED":   "true",
		"SESSION_SECRET": "s3cret",
	}))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !cfg.AuthEnabled || cfg.SessionSecret != "s3cret" {
		t.Errorf("Expected auth enabled with secret, got %+v", cfg)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"SESSION_COOKIE_NAME":     "dash",
		"SESSION_COOKIE_SAMESITE": "Strict",
		"MUTATION_SECRET":         "m",
		"MUTATION_SECRET_HEADER":  "X-Write-Key",
		"RATE_LIMIT_MUTATIONS":    "5",
		"RATE_LIMIT_WINDOW":       "10s",
		"HEALTH_CACHE_TTL":        "30",
		"CORS_ALLOWED_ORIGINS":    "https://a.example.com, ,https://b.example.com",
	}))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.CookieName != "dash" {
		t.Errorf("CookieName = %q", cfg.CookieName)
	}
	if cfg.CookieSameSite != http.SameSiteStrictMode {
		t.Errorf("CookieSameSite = %v", cfg.CookieSameSite)
	}
	if cfg.MutationSecretHeader != "X-Write-Key" || !cfg.MutationsConfigured() {
		t.Errorf("Mutation settings not applied: %+v", cfg)
	}
	if cfg.RateLimitMutations != 5 || cfg.RateLimitWindow != 10*time.Second {
		t.Errorf("Rate limit overrides not applied: %d %s", cfg.RateLimitMutations, cfg.RateLimitWindow)
	}
	if cfg.HealthCacheTTL != 30*time.Second {
		t.Errorf("Bare seconds should parse as duration, got %s", cfg.HealthCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"rate limit zero", map[string]string{"RATE_LIMIT_MUTATIONS": "0"}},
		{"rate limit too high", map[string]string{"RATE_LIMIT_MUTATIONS": "10001"}},
		{"negative window", map[string]string{"RATE_LIMIT_WINDOW": "-1s"}},
		{"bad samesite", map[string]string{"SESSION_COOKIE_SAMESITE": "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(withCleanEnv(t, tt.env))

			_, err := Load()
			if !errors.Is(err, ErrConfig) {
				t.Errorf("Expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{
		"PORT": "9999",
	}))

	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=7000\nMUTATION_SECRET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Setenv("ENV_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.MutationSecret != "from-file" {
		t.Errorf("Expected secret from env file, got %q", cfg.MutationSecret)
	}
	if cfg.Port != "9999" {
		t.Errorf("Real environment should win over env file, got port %s", cfg.Port)
	}
}

func TestGet_MemoizesFirstLoad(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{"PORT": "7100"}))
	withFreshGet(t)

	first, err := Get()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	os.Setenv("PORT", "7200")
	os.Setenv("RATE_LIMIT_MUTATIONS", "0")

	second, err := Get()
	if err != nil {
		t.Fatalf("Second call should not re-read the environment, got %v", err)
	}
	if first != second {
		t.Error("Expected the same *Config from every call")
	}
	if second.Port != "7100" {
		t.Errorf("Expected memoized port 7100, got %s", second.Port)
	}
}

func TestGet_MemoizesError(t *testing.T) {
	t.Cleanup(withCleanEnv(t, map[string]string{"AUTH_ENABLED": "true"}))
	withFreshGet(t)

	if _, err := Get(); !errors.Is(err, ErrConfig) {
		t.Fatalf("Expected ErrConfig, got %v", err)
	}

	// Fixing the environment later does not revive a failed startup.
	os.Setenv("SESSION_SECRET", "late")
	if _, err := Get(); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected memoized ErrConfig, got %v", err)
	}
}
