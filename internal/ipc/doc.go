// Package ipc exposes the settings store over JSON-RPC on a Unix socket and
// ships the matching client used by the CLI.
//
// The service is registered as "Settings". Get reloads the settings file and
// returns the current document. Update merges a partial document and saves
// it. Status reports the daemon PID and store state.
package ipc
