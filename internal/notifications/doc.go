// Package notifications publishes workflow events to an ntfy topic.
//
// When no topic is configured the service is a no-op, so callers never need
// to branch on whether push notifications are enabled.
package notifications
