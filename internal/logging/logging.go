// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Setup installs a text handler writing to w as the default logger. Debug
// records are emitted only when verbose is set.
func Setup(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// NewRunID returns an identifier for one analysis run.
func NewRunID() string {
	return uuid.NewString()
}

// ForRun returns the default logger tagged with a fresh run ID.
func ForRun(task string) *slog.Logger {
	return slog.Default().With("run", NewRunID(), "task", task)
}
