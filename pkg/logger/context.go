package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type (
	runIDKey  struct{}
	recordKey struct{}
)

// WithRunID stores the identifier of the current series run in ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// WithRecord stores the 1-based number of the record being processed in ctx.
func WithRecord(ctx context.Context, number int) context.Context {
	return context.WithValue(ctx, recordKey{}, number)
}

// RunIDExtractor adds run_id to log entries made with a run context.
func RunIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return slog.String("run_id", id), true
	}
	return slog.Attr{}, false
}

// RecordExtractor adds record to log entries made while a record is processed.
func RecordExtractor(ctx context.Context) (slog.Attr, bool) {
	if n, ok := ctx.Value(recordKey{}).(int); ok {
		return slog.Int("record", n), true
	}
	return slog.Attr{}, false
}

// contextHandler wraps a slog.Handler and injects context-extracted attributes.
// Extraction happens per call, so the record number follows the loop.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps next with the given extractors. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
