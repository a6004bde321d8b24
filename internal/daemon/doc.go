// Package daemon runs the Easel service: the asset registry, the
// modification engine, and the HTTP surface over them. A file lock enforces
// single-instance execution.
package daemon
