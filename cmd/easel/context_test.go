package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesTransportTraceToLogFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	configPath := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(
		"[paths]\nlog_dir = %q\n\n[service]\nbase_url = %q\n\n[logging]\nlevel = \"debug\"\n",
		logDir, server.URL)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := newCommandContext(&configPath)
	apiClient, _, err := ctx.newClient()
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// A messageless 502 is a transport error; the status detail belongs in
	// the log file, not in what the command surfaces.
	if _, err := apiClient.Modify(context.Background(), "a1", "prompt"); err == nil {
		t.Fatal("expected transport error")
	}

	logged, err := os.ReadFile(filepath.Join(logDir, "easel.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(logged), "unexpected response") {
		t.Fatalf("log file missing transport trace:\n%s", logged)
	}
}

func TestLoggerFallsBackToNopWhenConfigUnreadable(t *testing.T) {
	// Pointing the config flag at a directory makes Load fail; the logger
	// must still come back usable.
	badPath := t.TempDir()
	ctx := newCommandContext(&badPath)
	if logger := ctx.logger(); logger == nil {
		t.Fatal("logger must never be nil")
	}
	if _, err := ctx.ensureConfig(); err == nil {
		t.Fatal("expected config load failure for directory path")
	}
}
