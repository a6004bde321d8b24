// Package client implements the HTTP client the workflow coordinators use
// to reach the Easel daemon.
//
// Transport failures and malformed responses are tagged services.ErrTransport
// so callers surface only generic text; non-2xx responses carrying a message
// become services.ErrService and are surfaced verbatim.
package client
