package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// CompactHandler wraps an slog.Handler to format floating-point
// attributes compactly. Check scores and p-values are float64 values
// whose default %v rendering produces long digit strings that drown
// out the rest of the log line.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Callers log raw float64 values and formatting stays in one place
type CompactHandler struct {
	// handler is the underlying slog handler that receives formatted records.
	handler slog.Handler
}

// NewCompactHandler creates a new CompactHandler wrapping the given handler.
// All float64 attributes will be reformatted before being passed on.
// If handler is nil, the returned CompactHandler will use slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle reformats the record's attributes and passes it to the underlying handler.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	formatted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		formatted.AddAttrs(h.formatAttr(a))
		return true
	})

	return h.handler.Handle(ctx, formatted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are reformatted before being added.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	formatted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		formatted[i] = h.formatAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(formatted)}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name)}
}

// formatAttr reformats a single attribute, recursively handling groups.
func (h *CompactHandler) formatAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		formatted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			formatted[i] = h.formatAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(formatted...)}
	}

	if a.Value.Kind() == slog.KindFloat64 {
		return slog.String(a.Key, formatFloat(a.Value.Float64()))
	}

	return a
}

// formatFloat renders a float with four significant digits. NaN is kept
// literal so an inapplicable score is visible as such.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}

// NewLogger creates a new slog.Logger with compact float formatting.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewCompactHandler(textHandler))
}
