// Package logging provides a minimal logging interface and adapters for agentmarket.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runtime and actors use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - MarketLogger, a slog-backed logger with component/actor scoping
//   - ZapAdapter wrapping go.uber.org/zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(logging.DefaultLoggerConfig())
//	eng := engine.New(dir, func(o *engine.Options) { o.Logger = logger })
package logging
