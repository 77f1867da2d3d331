// Package logger provides structured logging with colored output and GitHub
// Actions error annotations.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// New creates a structured logger writing to w at the given level.
// Uses colored text format by default, JSON if LOG_FORMAT=json env var is set.
// Colors can be disabled by setting NO_COLOR=1 or LOG_COLOR=false.
func New(level string, w io.Writer) *slog.Logger {
	return slog.New(newHandler(ParseLevel(level), w))
}

// NewWithAnnotations is New plus a mirror of every error record as a
// `::error::` workflow command on annotations.
func NewWithAnnotations(level string, w, annotations io.Writer) *slog.Logger {
	return slog.New(&annotationHandler{
		next: newHandler(ParseLevel(level), w),
		out:  annotations,
		mu:   &sync.Mutex{},
	})
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func newHandler(l slog.Level, w io.Writer) slog.Handler {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
	}
	return &coloredTextHandler{
		w:        w,
		level:    l,
		useColor: shouldUseColor(),
		mu:       &sync.Mutex{},
	}
}

// shouldUseColor determines if colored output should be used.
func shouldUseColor() bool {
	// Respect NO_COLOR env var (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if logColor := strings.ToLower(os.Getenv("LOG_COLOR")); logColor == "false" || logColor == "0" {
		return false
	}
	return true
}

var levelStyles = map[slog.Level]struct{ color, label string }{
	slog.LevelDebug: {colorCyan, "DEBUG"},
	slog.LevelInfo:  {colorBlue, "INFO "},
	slog.LevelWarn:  {colorYellow, "WARN "},
	slog.LevelError: {colorRed + colorBold, "ERROR"},
}

// coloredTextHandler is a slog.Handler that writes one colored line per record.
type coloredTextHandler struct {
	w        io.Writer
	level    slog.Level
	useColor bool
	attrs    []slog.Attr
	prefix   string // group path, "a.b."
	mu       *sync.Mutex
}

func (h *coloredTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *coloredTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	h.paint(&buf, colorGray, r.Time.Format("2006-01-02 15:04:05"))
	buf.WriteString(" ")

	style, ok := levelStyles[r.Level]
	if !ok {
		style.label = r.Level.String()
	}
	h.paint(&buf, style.color, style.label)
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *coloredTextHandler) writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix+a.Key+".", ga)
		}
		return
	}
	buf.WriteString(" ")
	h.paint(buf, colorGray, prefix+a.Key+"="+a.Value.String())
}

func (h *coloredTextHandler) paint(buf *strings.Builder, color, s string) {
	if h.useColor && color != "" {
		buf.WriteString(color)
		buf.WriteString(s)
		buf.WriteString(colorReset)
		return
	}
	buf.WriteString(s)
}

func (h *coloredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *coloredTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
