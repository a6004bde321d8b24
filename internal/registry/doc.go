// Package registry persists asset records in SQLite and owns the uploaded
// and derived image bytes on disk.
//
// The Store assigns every asset an opaque UUID at registration time; that
// identifier, not the source file name, is the handle all other components
// use. Source names are kept for display and for the /uploads retrieval
// path, where a re-upload under the same name simply replaces the bytes.
//
// The database is treated as the single source of truth for asset metadata.
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package registry
