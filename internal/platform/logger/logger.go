package logger

import (
	"io"
	"log/slog"
	"os"

	"schoolhr/internal/platform/config"
)

// New builds the process logger: JSON when LOG_FORMAT=json, text otherwise.
func New(cfg config.Config) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

func NewWithWriter(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.IsProduction()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("env", cfg.Environment)
}
