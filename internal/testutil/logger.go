package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that drops everything, keeping test output
// readable
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
