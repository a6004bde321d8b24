package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"easel/internal/client"
	"easel/internal/config"
	"easel/internal/logging"
	"easel/internal/services"
)

func newTestClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	cfg := config.Default()
	cfg.Service.BaseURL = baseURL
	cfg.Service.RequestTimeout = 5
	return client.New(&cfg, testLogger())
}

func testLogger() *slog.Logger {
	return logging.NewNop()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadSendsMultipartImageField(t *testing.T) {
	var gotField, gotFilename, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/assets" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotField = "image"
		gotFilename = header.Filename
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok", "asset_id": "a1"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	path := writeTempFile(t, "cat.png", "png-bytes")

	result, err := c.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotField != "image" || gotFilename != "cat.png" || gotBody != "png-bytes" {
		t.Fatalf("multipart form: field=%q filename=%q body=%q", gotField, gotFilename, gotBody)
	}
	if result.AssetID != "a1" {
		t.Fatalf("asset id = %q", result.AssetID)
	}
	if result.Message != "ok" {
		t.Fatalf("message = %q", result.Message)
	}
	if result.OriginalURL != server.URL+"/uploads/cat.png" {
		t.Fatalf("original url = %q", result.OriginalURL)
	}
}

func TestUploadSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "storage full"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	path := writeTempFile(t, "cat.png", "bytes")

	_, err := c.Upload(context.Background(), path)
	if !errors.Is(err, services.ErrService) {
		t.Fatalf("expected service error, got %v", err)
	}
	if got := services.UserMessage(err, "generic"); got != "storage full" {
		t.Fatalf("user message = %q", got)
	}
}

func TestUploadTreatsMessagelessFailureAsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	path := writeTempFile(t, "cat.png", "bytes")

	_, err := c.Upload(context.Background(), path)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUploadRejectsResponseWithoutAssetID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	path := writeTempFile(t, "cat.png", "bytes")

	_, err := c.Upload(context.Background(), path)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error for missing asset_id, got %v", err)
	}
}

func TestModifyPayloadShape(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/modify" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":      "modification applied",
			"asset_id":     "d1",
			"modified_url": "/derived/cat-d1.png",
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result, err := c.Modify(context.Background(), "a1", "make it blue")
	if err != nil {
		t.Fatalf("modify: %v", err)
	}

	// Payload is exactly {asset_id, prompt}.
	if len(got) != 2 {
		t.Fatalf("payload has %d fields: %v", len(got), got)
	}
	if got["asset_id"] != "a1" || got["prompt"] != "make it blue" {
		t.Fatalf("payload = %v", got)
	}

	if result.ModifiedURL != server.URL+"/derived/cat-d1.png" {
		t.Fatalf("modified url = %q", result.ModifiedURL)
	}
	if result.AssetID != "d1" {
		t.Fatalf("asset id = %q", result.AssetID)
	}
}

func TestModifyTransportError(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Modify(context.Background(), "a1", "prompt")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
