package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/slightcsv/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// WithRequestMetadata adds the request id and client address to ctx for
// service logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	ctx = core.ContextWithRequestID(ctx, middleware.GetReqID(r.Context()))
	ctx = core.ContextWithRemoteIP(ctx, ip)
	return ctx
}

// requestMetadata applies WithRequestMetadata to every request.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
