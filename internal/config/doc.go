// Package config loads, normalizes, and validates rpgdecrypt configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RPGDECRYPT_WORKERS. The Config type centralizes the output mode, manifest
// rewrite policy, worker pool sizing, and logging knobs in one place.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
