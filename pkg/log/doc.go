// Package log provides structured decode telemetry.
//
// This package defines the Logger interface and the Event type the decoders
// emit while consuming a registry document: one event per emitted record,
// one per fatal decode error, one when a document completes.
//
// # Basic Usage
//
// Callers configure logging through the decoder options:
//
//	// For development: log to console via slog
//	opts.Logger = log.NewSlogAdapter(slog.Default())
//
//	// Multiple sinks
//	opts.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    myMetricsLogger,
//	)
//
// Passing nil (or NoopLogger) disables logging.
package log
