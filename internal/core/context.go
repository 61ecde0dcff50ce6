package core

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
	ctxKeyRemoteIP  contextKey = "remote_ip"
)

// ContextWithRequestID adds the request id to context for load logging.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextWithRemoteIP adds the client address to context for load logging.
func ContextWithRemoteIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyRemoteIP, ip)
}

// RequestIDFromContext extracts the request id from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// RemoteIPFromContext extracts the client address from context.
func RemoteIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRemoteIP).(string); ok {
		return v
	}
	return ""
}

// loggerFor returns l with the request attributes stored in ctx.
func loggerFor(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if ip := RemoteIPFromContext(ctx); ip != "" {
		l = l.With("remote_ip", ip)
	}
	return l
}
