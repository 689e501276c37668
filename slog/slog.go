// Package slog provides log/slog decorators for the extraction pipeline.
// Each decorator logs one line per call and delegates to the wrapped value.
package slog
