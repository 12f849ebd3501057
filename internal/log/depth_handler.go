package log

import (
	"context"
	"log/slog"
	"strings"
)

// DepthKey is the attribute key DepthHandler reads the crawl depth from.
const DepthKey = "depth"

// indentUnit is prepended to the message once per depth level.
const indentUnit = "  "

// DepthHandler wraps an slog.Handler and indents record messages by the
// value of their integer "depth" attribute. Records without a depth
// attribute pass through unchanged. The depth attribute itself is kept,
// so machine-readable output still carries it.
type DepthHandler struct {
	// handler is the underlying slog handler that receives the record.
	handler slog.Handler
}

// NewDepthHandler creates a DepthHandler wrapping the given handler.
// If handler is nil, the returned DepthHandler uses slog.Default().Handler().
func NewDepthHandler(handler slog.Handler) *DepthHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &DepthHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *DepthHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle indents the record message by its depth attribute and passes the
// record to the underlying handler.
func (h *DepthHandler) Handle(ctx context.Context, r slog.Record) error {
	depth := -1
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == DepthKey && a.Value.Kind() == slog.KindInt64 {
			depth = int(a.Value.Int64())
			return false
		}
		return true
	})

	if depth <= 0 {
		return h.handler.Handle(ctx, r)
	}

	indented := slog.NewRecord(r.Time, r.Level, strings.Repeat(indentUnit, depth)+r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		indented.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, indented)
}

// WithAttrs returns a new DepthHandler whose underlying handler has the
// given attributes.
func (h *DepthHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DepthHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new DepthHandler whose underlying handler has the
// given group.
func (h *DepthHandler) WithGroup(name string) slog.Handler {
	return &DepthHandler{handler: h.handler.WithGroup(name)}
}
