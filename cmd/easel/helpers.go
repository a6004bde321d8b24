package main

import "strings"

// absoluteURL resolves a service-relative path against the configured base URL.
func absoluteURL(baseURL, path string) string {
	if path == "" || strings.Contains(path, "://") {
		return path
	}
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
