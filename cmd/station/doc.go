// Package main hosts the station CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon, starts and stops a background daemon, runs it in the
// foreground via "serve", tails its log, and scaffolds configuration.
// Settings logic lives in internal/settings; the commands here only parse
// flags, call the daemon, and render results.
package main
