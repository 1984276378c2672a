// Package logging provides a minimal logging interface and adapters.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the flow, dispatcher and tools use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - LogLevel and ParseLevel for configuration files
//   - SlogAdapter and AssistantLogger wrapping Go's structured logging
//   - ZapAdapter wrapping go.uber.org/zap (used by the CLI)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	agent := fashionagent.New(m, tools, func(o *fashionagent.Options) { o.Logger = logger })
package logging
