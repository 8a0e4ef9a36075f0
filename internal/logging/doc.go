// Package logging assembles the structured slog loggers used by the station
// daemon and CLI.
//
// It owns the console and JSON handlers, level parsing, and output plumbing
// (stdout, stderr, and append-only log files), plus attribute helpers that
// keep warning and error records shaped the same way everywhere: every WARN
// carries an event type, an error hint, and an impact.
//
// NewNop returns a logger that discards everything; tests and optional wiring
// use it instead of nil checks.
package logging
