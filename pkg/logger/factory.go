package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config configures the diagnostic logger.
type Config struct {
	// Output receives log lines (default: os.Stderr, keeping stdout free for printed mail).
	Output io.Writer
	// JSON switches from the human-readable text format to JSON lines.
	JSON bool
	// Verbosity maps to a level: 0 warn, 1 info, 2 and above debug.
	Verbosity int
}

// LevelFromVerbosity maps a -v count to a slog level.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New creates a logger writing to cfg.Output with run and record extractors installed.
// Additional extractors are appended.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewContextHandler(baseHandler(cfg), withDefaults(extractors)...))
}

func baseHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: LevelFromVerbosity(cfg.Verbosity)}
	if cfg.JSON {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

func withDefaults(extra []ContextExtractor) []ContextExtractor {
	return append([]ContextExtractor{RunIDExtractor, RecordExtractor}, extra...)
}
