package services_test

import (
	"errors"
	"testing"

	"easel/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrService, "upload", "create asset", "storage full", nil)
	if !errors.Is(err, services.ErrService) {
		t.Fatalf("expected wrapped error to match ErrService, got %v", err)
	}
	if errors.Is(err, services.ErrValidation) {
		t.Fatalf("error should not match ErrValidation: %v", err)
	}
}

func TestWrapDefaultsToTransport(t *testing.T) {
	err := services.Wrap(nil, "modify", "send request", "", errors.New("connection refused"))
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected nil marker to default to ErrTransport, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	svcErr := services.Wrap(services.ErrService, "", "", "storage full", nil)
	if got := services.UserMessage(svcErr, "generic"); got != "storage full" {
		t.Fatalf("service error should surface verbatim, got %q", got)
	}

	transportErr := services.Wrap(services.ErrTransport, "upload", "send request", "", errors.New("dial tcp: refused"))
	if got := services.UserMessage(transportErr, "Upload failed. Is the daemon running?"); got != "Upload failed. Is the daemon running?" {
		t.Fatalf("transport error should use generic text, got %q", got)
	}

	if got := services.UserMessage(nil, "generic"); got != "" {
		t.Fatalf("nil error should produce empty message, got %q", got)
	}
}

func TestIsLocal(t *testing.T) {
	if !services.IsLocal(services.Wrap(services.ErrValidation, "upload", "", "no file selected", nil)) {
		t.Fatal("validation errors are local")
	}
	if services.IsLocal(services.Wrap(services.ErrService, "upload", "", "boom", nil)) {
		t.Fatal("service errors are not local")
	}
}
