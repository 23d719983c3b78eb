package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// LevelCritical sits above slog's error level; used when a file is given up on.
const LevelCritical = slog.Level(12)

// Logger provides leveled, structured logging and lightweight timing helpers.
// The zero value discards everything.
type Logger struct {
	base    *slog.Logger
	Verbose bool
}

// New builds a Logger writing to writer. format is "text" or "json"; level is
// one of debug, info, warn, error. Level debug implies verbose.
func New(writer io.Writer, verbose bool, format, level string) Logger {
	lvl := parseLevel(level, verbose)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: renameCritical,
	}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return Logger{base: slog.New(handler), Verbose: lvl <= slog.LevelDebug}
}

// With returns a Logger that adds attrs to every line.
func (l Logger) With(attrs ...any) Logger {
	if l.base == nil {
		return l
	}
	return Logger{base: l.base.With(attrs...), Verbose: l.Verbose}
}

func (l Logger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l Logger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l Logger) Criticalf(format string, args ...any) {
	l.log(LevelCritical, format, args...)
}

// Debugf is Verbosef under the name HTTP client loggers expect.
func (l Logger) Debugf(format string, args ...any) {
	l.Verbosef(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.log(slog.LevelDebug, format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}

func (l Logger) log(level slog.Level, format string, args ...any) {
	if l.base == nil {
		return
	}
	ctx := context.Background()
	if !l.base.Enabled(ctx, level) {
		return
	}
	l.base.Log(ctx, level, fmt.Sprintf(format, args...))
}

func parseLevel(level string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func renameCritical(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
