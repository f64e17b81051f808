// Package logging assembles the structured slog loggers used across tailor.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with request IDs, phase names, and attempt indices. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
