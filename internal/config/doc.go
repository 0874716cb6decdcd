// Package config loads, normalizes, and validates Confab configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and ASSEMBLYAI_API_KEY. The Config type centralizes every
// knob the daemon and CLI need, allowing inbox/staging directories and
// provider credentials to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
