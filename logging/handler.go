package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/guaranteeops/reconbot/eventctx"
)

// JSONEventCtxHandler is a [Handler] that writes Records to an [io.Writer] as
// line-delimited JSON objects while enriching them from the event context.
type JSONEventCtxHandler struct {
	wrappedHandler slog.Handler

	//A hook to make sure records are logged if they are of a certain level or a specific context was passed
	forceEnabler ForceEnabler
}

func NewJSONEventCtxHandler(w io.Writer, opts *slog.HandlerOptions, forceEnabler ForceEnabler) *JSONEventCtxHandler {
	h := slog.NewJSONHandler(w, opts)
	if forceEnabler == nil {
		forceEnabler = neverForce{}
	}
	return &JSONEventCtxHandler{h, forceEnabler}
}

// Enabled reports whether the handler handles records at the given level.
// The handler ignores records whose level is lower.
func (h *JSONEventCtxHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.forceEnabler.IsForceEnabled(ctx, level) {
		return true
	}
	return h.wrappedHandler.Enabled(ctx, level)
}

func (h *JSONEventCtxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &JSONEventCtxHandler{wrappedHandler: h.wrappedHandler.WithAttrs(attrs), forceEnabler: h.forceEnabler}
}

func (h *JSONEventCtxHandler) WithGroup(name string) slog.Handler {
	return &JSONEventCtxHandler{wrappedHandler: h.wrappedHandler.WithGroup(name), forceEnabler: h.forceEnabler}
}

func (h *JSONEventCtxHandler) Handle(ctx context.Context, r slog.Record) error {
	eCtx, ok := eventctx.FromContext(ctx)
	if ok && eCtx.EventID != "" {
		r.AddAttrs(slog.String("EventId", eCtx.EventID))
		if eCtx.Kind != "" {
			r.AddAttrs(slog.String("EventKind", eCtx.Kind))
		}
		if eCtx.UserID != "" {
			r.AddAttrs(slog.String("SlackUser", eCtx.UserID))
		}
		if eCtx.Channel != "" {
			r.AddAttrs(slog.String("SlackChannel", eCtx.Channel))
		}
	}

	return h.wrappedHandler.Handle(ctx, r)
}
