// Package preflight provides readiness checks for the filesystem paths
// station depends on.
//
// The daemon runs RunAll at startup and logs failures as warnings; the CLI
// "config validate" command prints the same results.
package preflight
