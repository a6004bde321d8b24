package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
	ErrService    = errors.New("service error")
	ErrTransport  = errors.New("transport error")
	ErrNotFound   = errors.New("not found")
)

// Wrap builds an error message that includes action context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, action, operation, message string, err error) error {
	detail := buildDetail(action, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsLocal reports whether the error was detected before any network call.
func IsLocal(err error) bool {
	return errors.Is(err, ErrValidation)
}

// UserMessage extracts the text that should be surfaced in a notification.
// Service errors are shown verbatim; transport errors get generic text so
// internal diagnostics stay at log level.
func UserMessage(err error, generic string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrTransport) {
		return generic
	}
	msg := err.Error()
	for _, marker := range []error{ErrValidation, ErrService, ErrNotFound} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(action, operation, message string) string {
	parts := make([]string, 0, 3)
	if action = strings.TrimSpace(action); action != "" {
		parts = append(parts, action)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
