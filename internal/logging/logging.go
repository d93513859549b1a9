// Package logging builds the process logger. The HTTP server logs JSON to
// stdout; the terminal UI and the stdio MCP server own stdout, so they log
// to a rotating file instead.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFile returns a JSON logger writing to a rotating file at path and the
// closer for that file. If the directory cannot be created, logs are
// discarded.
func NewFile(path string, level slog.Level) (*slog.Logger, io.Closer) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return New(io.Discard, level), io.NopCloser(nil)
	}
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
	return New(sink, level), sink
}

// Stdout is the server logger; it also becomes the slog default.
func Stdout(level slog.Level) *slog.Logger {
	logger := New(os.Stdout, level)
	slog.SetDefault(logger)
	return logger
}
