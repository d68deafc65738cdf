// Package config loads, validates, and normalizes the TOML configuration
// for the matching engine. Defaults come from Default(); Load merges a
// config file over them, expands paths, and validates the result.
package config
