// Package config loads, normalizes, and validates tailor configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ANTHROPIC_API_KEY. The Config type centralizes every knob the daemon and
// CLI need: retry bounds, compile timeouts, scratch directories, and the
// generative service credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
