// Package log provides the assistant's structured logging (slog): a
// level-filtered handler writing key=value lines to an io.Writer, plus a
// helper to install it as the process default.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Handler implements slog.Handler with plain key=value output suitable for
// a desktop process's stderr or a session log file.
type Handler struct {
	opts  handlerConfig
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

// HandlerOption configures the Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, opts ...HandlerOption) *Handler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handler{opts: cfg, out: out, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle writes one record as a single line.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.out, "%s %-5s %s",
		record.Time.Format(time.RFC3339), record.Level, record.Message)
	for _, attr := range h.attrs {
		h.writeAttr(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.writeAttr(attr)
		return true
	})
	fmt.Fprintln(h.out)
	return nil
}

func (h *Handler) writeAttr(attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	key := attr.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	fmt.Fprintf(h.out, " %s=%v", key, attr.Value)
}

// WithAttrs returns a Handler that includes the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a Handler qualifying attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// ParseLevel maps a config string to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a Handler as the process default logger and returns it.
func Setup(level string) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, WithLevel(ParseLevel(level))))
	slog.SetDefault(logger)
	return logger
}
