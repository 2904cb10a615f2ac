package main

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// newLogger builds a logger that always writes human-readable text to
// stderr and, when logFilePath is non-empty, additionally fans out
// structured JSON records to that file — a CLI's two audiences (a
// developer watching the terminal, a CI job grepping a log file) getting
// two different encodings of the same events rather than one compromise
// format.
func newLogger(logFilePath string) *slog.Logger {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})

	if logFilePath == "" {
		return slog.New(stderrHandler)
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.New(stderrHandler).Warn("could not open log file, logging to stderr only", "path", logFilePath, "error", err)
		return slog.New(stderrHandler)
	}

	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})

	fanout := slogmulti.Fanout(stderrHandler, fileHandler)
	return slog.New(fanout)
}
