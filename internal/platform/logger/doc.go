// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package, with an optional rotated log
// file and helpers for carrying request-scoped loggers through a context.
package logger
