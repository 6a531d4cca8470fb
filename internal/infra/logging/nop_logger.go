package logging

import (
	"log/slog"
)

// NewNopLogger creates a logger that discards all output.
// GetLogger returns it when no output is configured, which is the default in tests.
func NewNopLogger() Logger {
	return slog.New(slog.DiscardHandler)
}
