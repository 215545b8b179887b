// Package logger provides structured logging functionality for the application.
//
// It builds on the standard library log/slog package: a JSON handler with a
// configurable level, plus helpers that carry request-scoped loggers through
// a context.Context.
package logger
