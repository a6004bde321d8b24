// Package asset defines the in-memory model for the upload/modify workflow.
//
// An Asset tracks one uploaded image through its lifecycle: the identifier
// assigned by the registry, the display name of the source file, and the
// current Status. Status transitions are monotonic per asset instance; a
// failed asset is never revived, a fresh upload produces a new Asset value.
//
// Treat this package as the single source of truth for lifecycle semantics;
// when you add new statuses, update the transition table alongside them.
package asset
