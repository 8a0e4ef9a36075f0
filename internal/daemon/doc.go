// Package daemon coordinates the long-running station process.
//
// It owns the single-instance lock and the HTTP settings API. The settings
// store itself is opened by the caller and shared with the IPC server so both
// surfaces observe the same document.
package daemon
