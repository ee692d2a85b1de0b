// Package harness provides E2E testing utilities for curl2json.
package harness

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/curl2json/e2e/testserver"
)

// E2EHarness is the main test orchestrator.
type E2EHarness struct {
	t          *testing.T
	server     *testserver.Server
	tmpDir     string
	configPath string
	timeout    time.Duration
}

// Config configures the harness.
type Config struct {
	ServerHandlers map[string]http.HandlerFunc
	Timeout        time.Duration // Default: 5 seconds
	// ExtraConfig is appended to the generated config file.
	ExtraConfig string
}

// New creates a new E2E harness with an isolated config and history
// database.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	h := &E2EHarness{
		t:       t,
		tmpDir:  t.TempDir(),
		timeout: cfg.Timeout,
	}

	h.configPath = filepath.Join(h.tmpDir, "config.yaml")
	config := "color: false\n" +
		"history:\n" +
		"  enabled: true\n" +
		"  path: " + filepath.Join(h.tmpDir, "history.db") + "\n" +
		cfg.ExtraConfig
	if err := os.WriteFile(h.configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if len(cfg.ServerHandlers) > 0 {
		h.server = testserver.New(cfg.ServerHandlers)
		t.Cleanup(h.server.Close)
	}

	return h
}

// ServerURL returns the test server URL.
func (h *E2EHarness) ServerURL() string {
	if h.server == nil {
		return ""
	}
	return h.server.URL
}

// Server returns the recording test server, or nil when no handlers
// were configured.
func (h *E2EHarness) Server() *testserver.Server {
	return h.server
}

// TmpDir returns the temporary directory path.
func (h *E2EHarness) TmpDir() string {
	return h.tmpDir
}

// ConfigPath returns the generated config file.
func (h *E2EHarness) ConfigPath() string {
	return h.configPath
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}
