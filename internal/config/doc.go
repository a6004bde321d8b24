// Package config loads, validates, and normalizes Easel configuration.
//
// Configuration is TOML, read from --config, ~/.config/easel/config.toml, or
// a project-local easel.toml, in that order. Defaults keep a fresh install
// working without a config file: the daemon binds to localhost and stores
// assets under ~/.local/share/easel.
package config
