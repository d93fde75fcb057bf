// Package logging builds the application's slog logger: text on stdout in
// development, JSON in production, plus an optional rotating log file.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json; empty picks text in development
	File   string // optional path, rotated by size
	Dev    bool
}

// New returns a logger and a closer for the rotating file, if any. Console
// output goes to w.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "json"
		if opts.Dev {
			format = "text"
		}
	}

	var console slog.Handler
	if format == "json" {
		console = slog.NewJSONHandler(w, hopts)
	} else {
		console = slog.NewTextHandler(w, hopts)
	}

	if strings.TrimSpace(opts.File) == "" {
		return slog.New(console), nopCloser{}
	}

	file := &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
	h := &multi{hs: []slog.Handler{console, slog.NewJSONHandler(file, hopts)}}
	return slog.New(h), file
}

// Setup builds the logger for stdout and installs it as slog's default.
func Setup(opts Options) io.Closer {
	logger, closer := New(os.Stdout, opts)
	slog.SetDefault(logger)
	return closer
}

// ParseLevel converts a level name to slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multi fans out log records to several handlers.
type multi struct{ hs []slog.Handler }

func (m *multi) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multi) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) WithAttrs(attrs []slog.Attr) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithAttrs(attrs)
	}
	return &multi{hs: res}
}

func (m *multi) WithGroup(name string) slog.Handler {
	res := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		res[i] = h.WithGroup(name)
	}
	return &multi{hs: res}
}
