// Package logging provides logging utilities for quiv.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("resolved revision", "source", name, "revision", rev)
//	logging.DebugCommand(dir, "git", "sparse-checkout", "set", "skills/x")
//
// # User Output
//
// User-facing messages are formatted with status indicators styled by lipgloss:
//
//	logging.UserInfo("Fetching source: %s", name)
//	logging.UserSuccess("Fetched: %s", skill)
//	logging.UserWarning("%s: not found upstream", skill)
//	logging.UserError("%v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess, UserPlain: stdout
//   - UserWarning, UserError: stderr
//
// Both can be redirected with SetOutput.
package logging
