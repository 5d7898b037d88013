// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// withCleanEnv clears the environment, points ENV_FILE at a file that does not
// exist, applies extra, and returns a cleanup function that restores the
// original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanEnv(t, map[string]string{
//	        "AUTH_ENABLED": "true",
//	    }))
//	}
func withCleanEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	os.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			if key, value, ok := strings.Cut(env, "="); ok {
				os.Setenv(key, value)
			}
		}
	}
}

// withFreshGet forgets any memoized configuration for the duration of a test.
func withFreshGet(t *testing.T) {
	t.Helper()
	saved := loadOnce
	loadOnce = sync.OnceValues(Load)
	t.Cleanup(func() { loadOnce = saved })
}
