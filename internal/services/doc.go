// Package services defines the shared error taxonomy for workflow actions.
//
// Coordinators tag failures with one of the sentinel errors so callers can
// classify them without string matching: validation errors never left the
// client, service errors carry a message from the daemon, transport errors
// hide their detail behind a generic user-facing message.
package services
