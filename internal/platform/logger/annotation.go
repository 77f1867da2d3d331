package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ErrorKey is the attribute whose value becomes the annotation text.
const ErrorKey = "error"

// annotationHandler forwards records to next and additionally writes error
// records as GitHub Actions `::error::` commands.
type annotationHandler struct {
	next  slog.Handler
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
}

func (h *annotationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelError || h.next.Enabled(ctx, level)
}

func (h *annotationHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		if err := h.annotate(r); err != nil {
			return err
		}
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *annotationHandler) annotate(r slog.Record) error {
	msg := r.Message
	for _, a := range h.attrs {
		if a.Key == ErrorKey {
			msg = a.Value.String()
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == ErrorKey {
			msg = a.Value.Resolve().String()
			return false
		}
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, "::error::"+EscapeData(msg)+"\n")
	return err
}

func (h *annotationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *annotationHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// EscapeData escapes s for use as workflow command data.
func EscapeData(s string) string {
	return dataEscaper.Replace(s)
}
