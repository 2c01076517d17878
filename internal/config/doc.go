// Package config loads, normalizes, and validates lessonvault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LESSONVAULT_SESSION. The Config type centralizes every knob the CLI and the
// download pipeline need so output, cache, and scratch directories plus the
// external tool settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
