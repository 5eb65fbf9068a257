package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. debug enables
// LevelDebug, which will also dump full http request/response bodies
// through the resty instrumentation.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
