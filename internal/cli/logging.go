package cli

import (
	"io"
	"log/slog"
)

// configureLogging installs the process-wide slog handler: text to w,
// Debug under --verbose, Info otherwise.
func configureLogging(verbose bool, w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
