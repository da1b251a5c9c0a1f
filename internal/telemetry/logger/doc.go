// Package logger provides structured logging for statmesh.
//
// It wraps log/slog:
//
//   - logger.go: handler construction and a runtime-adjustable level
//   - context.go: context propagation of the logger and request IDs
//   - redact.go: masking of secret-looking attributes
//
// Components that only accept a *slog.Logger use slog.Default(), which
// SetDefault keeps in sync with this package's default logger.
package logger
