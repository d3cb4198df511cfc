// Package logging provides logging utilities for fleet-ctl.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for operators
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("building environment", "devcontainer", id, "policy", policy)
//	logging.Warn("port claimed twice", "port", port)
//
// # Secret Redaction
//
// Every handler installed by Setup is wrapped in a RedactFilter. Values
// registered with AddSecret (tokens, SSH keys read from the parameter
// store) are replaced with ***REDACTED*** in messages and attributes, and in
// User* output.
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Found %d devcontainer(s) in the configuration", n)
//	logging.UserSuccess("All devcontainers have been successfully set up")
//	logging.UserWarning("Port %d is claimed by %s and %s", port, a, b)
//	logging.UserError("Launcher failed for %s", id)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
