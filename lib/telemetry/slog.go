package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide text logger. verbose enables
// debug records.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
