package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"easel/internal/services"
	"easel/internal/workflow"
)

func writeClientConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf("[paths]\nlog_dir = %q\n\n[service]\nbase_url = %q\n", filepath.Join(dir, "logs"), baseURL)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runModify(t *testing.T, configPath string, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"modify", "--config", configPath}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestModifyCommandRejectsBlankPromptLocally(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	configPath := writeClientConfig(t, server.URL)

	err := runModify(t, configPath, "a1", "   ")
	if !errors.Is(err, workflow.ErrEmptyPrompt) {
		t.Fatalf("expected empty-prompt error, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation classification, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("blank prompt reached the service %d time(s)", hits.Load())
	}
}

func TestModifyCommandRejectsBlankAssetIDLocally(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	configPath := writeClientConfig(t, server.URL)

	err := runModify(t, configPath, "   ", "make it blue")
	if !errors.Is(err, workflow.ErrNoAssetRegistered) {
		t.Fatalf("expected missing-asset error, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("blank asset id reached the service %d time(s)", hits.Load())
	}
}

func TestModifyCommandSendsTrimmedRequest(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":      "Modification applied.",
			"asset_id":     "d1",
			"modified_url": "/derived/cat-d1.png",
		})
	}))
	defer server.Close()
	configPath := writeClientConfig(t, server.URL)

	if err := runModify(t, configPath, " a1 ", " make", "it", "blue "); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if got["asset_id"] != "a1" || got["prompt"] != "make it blue" {
		t.Fatalf("payload = %v", got)
	}
}
