// Package logger provides leveled logging for Harakeke CLI commands and the
// vault itself.
//
// The logger is the vault's only external collaborator: every diagnostic the
// vault emits (entropy regeneration, fallback directories, degraded write
// paths) flows through it, and it never receives secret plaintext.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: additionally shows debug details
//
// Warnings and errors are always written to stderr regardless of flags,
// because they describe conditions (degraded atomicity, invalidated secrets)
// the user must not miss.
//
// # Usage
//
// Create a logger with the desired verbosity and hand it to the vault:
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	v, err := vault.New(log)
package logger
