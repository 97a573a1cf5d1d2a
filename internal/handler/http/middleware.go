package http

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/vxsahu/urban-threadz/pkg/errors"
	"github.com/vxsahu/urban-threadz/pkg/httputil"
	"github.com/vxsahu/urban-threadz/pkg/middleware"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionIDFromHeader reads the X-Session-ID header, or the session_id query
// parameter when the header is absent, and stores it in the request context.
// Requests without a session are rejected with 401.
func SessionIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(middleware.SessionID(r))
		if sid == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("X-Session-ID header is required"), nil)
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
