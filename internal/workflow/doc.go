// Package workflow drives the upload/modify lifecycle of the current asset.
//
// A Session is the single source of truth for what the user currently sees:
// the current Asset, the in-flight ModificationRequest, and the one visible
// notification. Coordinators never mutate that state directly; they request
// transitions through the session, which also arbitrates racing actions so
// only the most recently issued request's resolution is ever applied.
package workflow
