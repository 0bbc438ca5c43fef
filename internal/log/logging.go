// Package log provides helpers for creating a configured slog.Logger.
//
// When a log file path is not provided, logs are written to stdout for
// non-error levels and to stderr for errors, so a fatal relay error always
// reaches stderr even when stdout is redirected.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
)

// LevelTrace defines a custom slog level below Debug for per-packet output.
const LevelTrace slog.Level = -8

// Levels lists the accepted --log.level values.
var Levels = []string{"trace", "debug", "info", "warn", "error"}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger builds a slog.Logger with console and optional file handlers.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	if logLevel != "" && !slices.Contains(Levels, strings.ToLower(logLevel)) {
		return nil, nil, fmt.Errorf("unknown log level %q", logLevel)
	}
	level := ParseLevel(logLevel)

	var handlers []slog.Handler
	var closeFiles []io.Closer
	if logFile == "" {
		handlers = consoleHandlers(os.Stdout, os.Stderr, level)
	} else {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closeFiles = append(closeFiles, f)
		handlers = append(handlers,
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}),
		)
	}
	logger := slog.New(MultiHandler{hs: handlers})
	slog.SetDefault(logger)
	return logger, closeFiles, nil
}

func consoleHandlers(stdout, stderr io.Writer, level slog.Level) []slog.Handler {
	return []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: &colorHandler{w: stdout, level: level}},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: &colorHandler{w: stderr, level: slog.LevelError}},
	}
}

// NewMulti returns a handler fanning out to hs.
func NewMulti(hs ...slog.Handler) MultiHandler { return MultiHandler{hs: hs} }

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}
func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r.Clone())
	}
	return nil
}
func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}
func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter delegates to an underlying handler but filters which levels are
// passed to it using the provided predicate.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	if !f.pass(level) {
		return false
	}
	return f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}
func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// colorHandler prints one ANSI coloured line per record. Attributes bound
// with Logger.With are printed before the record's own.
type colorHandler struct {
	w      io.Writer
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// levelStyle returns the printed name and ANSI colour of a level.
func levelStyle(l slog.Level) (string, string) {
	switch {
	case l >= slog.LevelError:
		return l.String(), "\033[31m"
	case l >= slog.LevelWarn:
		return l.String(), "\033[33m"
	case l >= slog.LevelInfo:
		return l.String(), "\033[32m"
	case l >= slog.LevelDebug:
		return l.String(), "\033[34m"
	case l >= LevelTrace:
		return "TRACE", "\033[35m"
	default:
		return l.String(), "\033[0m"
	}
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	name, color := levelStyle(r.Level)
	fmt.Fprintf(&buf, "\033[90m%s\033[0m %s%5s\033[0m %s",
		r.Time.Format("2006-01-02T15:04:05.000000Z07:00"), color, name, r.Message)

	write := func(prefix string, a slog.Attr) {
		v := a.Value.Resolve().String()
		if strings.ContainsAny(v, " \t\n\"") {
			v = strconv.Quote(v)
		}
		fmt.Fprintf(&buf, " %s%s=%s", prefix, a.Key, v)
	}
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h.prefix, a)
		return true
	})

	buf.WriteByte('\n')
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	out.attrs = append(out.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		out.attrs = append(out.attrs, a)
	}
	return &out
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := *h
	out.prefix = h.prefix + name + "."
	return &out
}
