// Package logs reads the daemon log file for the CLI.
//
// Last returns the final lines with bounded memory; Follow polls for appended
// lines until its context ends and restarts from the top when the file is
// truncated.
package logs
