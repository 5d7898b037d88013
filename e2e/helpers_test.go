// ABOUTME: Test helpers for e2e tests
// ABOUTME: Starts the full API from environment configuration on an httptest server

package e2e

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markalston/agent-dashboard/board"
	"github.com/markalston/agent-dashboard/config"
	"github.com/markalston/agent-dashboard/handlers"
)

const (
	mutationSecret = "e2e-mutation-secret"
	secretHeader   = "X-Mission-Control-Secret"
	operatorHeader = "X-Operator"
)

type apiServer struct {
	*httptest.Server
	cfg     *config.Config
	handler *handlers.Handler
}

// startServer loads configuration from the environment plus extra, seeds the
// board and serves the full router. Everything is torn down with the test.
func startServer(t *testing.T, extra map[string]string) *apiServer {
	t.Helper()

	env := map[string]string{
		"ENV_FILE":        filepath.Join(t.TempDir(), "missing.env"),
		"MUTATION_SECRET": mutationSecret,
		"AUTH_ENABLED":    "false",
	}
	for k, v := range extra {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	b := board.New()
	if err := b.SeedDemo(); err != nil {
		t.Fatalf("SeedDemo() error = %v", err)
	}

	h, err := handlers.NewHandler(cfg, handlers.Deps{Board: b})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	t.Cleanup(h.Close)

	srv := httptest.NewServer(handlers.NewRouter(h))
	t.Cleanup(srv.Close)

	return &apiServer{Server: srv, cfg: cfg, handler: h}
}

// request sends method/path with an optional JSON body and headers.
func (s *apiServer) request(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(data)
}

// mutate sends a write with the configured mutation secret.
func (s *apiServer) mutate(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	all := map[string]string{secretHeader: mutationSecret}
	for k, v := range headers {
		all[k] = v
	}
	return s.request(t, method, path, body, all)
}
