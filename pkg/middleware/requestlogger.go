package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vxsahu/urban-threadz/pkg/logger"
)

// SessionIDHeader identifies the browser session whose cart and wishlist a
// request operates on. EventSource cannot set headers, so SessionIDQuery is
// accepted as a fallback.
const (
	SessionIDHeader = "X-Session-ID"
	SessionIDQuery  = "session_id"
)

// SessionID returns the session a request belongs to, or "".
func SessionID(r *http.Request) string {
	if sid := r.Header.Get(SessionIDHeader); sid != "" {
		return sid
	}
	return r.URL.Query().Get(SessionIDQuery)
}

// RequestLogger builds a request-scoped logger enriched with correlation_id,
// session_id, trace_id and span_id and stores it in the request context.
// Downstream handlers retrieve it with logger.FromContext.
//
// Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sid := SessionID(r); sid != "" {
				ctx = logger.WithSessionID(ctx, sid)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
