// Package config loads, normalizes, and validates station configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and the working-directory relative settings file), reads TOML
// files, and honours environment overrides, optionally seeded from a .env
// file. The Config type centralizes the knobs the daemon and CLI need: where
// the settings document lives, where runtime state goes, and how the HTTP API
// and logging behave.
//
// Always obtain configuration through this package so downstream code
// receives absolute paths and clear validation errors.
package config
