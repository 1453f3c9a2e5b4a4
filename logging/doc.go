// Package logging provides a minimal logging interface and adapters for the
// runtime.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) used across the runner, guardrail and tool packages. This
// package includes:
//
//   - Logger interface for dependency injection
//   - slog-backed implementations (JSON or text handlers)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	r := runner.New(gateway, func(o *runner.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
