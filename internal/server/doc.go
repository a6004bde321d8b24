// Package server exposes the asset registry and modification engine over HTTP.
//
// The wire surface is small: clients register originals with a multipart POST,
// request prompt-driven modifications with a JSON POST, and fetch stored bytes
// by display name. Error bodies always carry a single message field.
package server
