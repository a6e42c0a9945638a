package http

import (
	"net/http"
	"strings"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/notify"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/middleware"
)

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
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

// CollectNotifications gives every request its own notification collector so
// the messages raised by store mutations can be returned with the response.
func CollectNotifications(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := notify.NewCollectorContext(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// respond writes data in the standard envelope together with any
// notifications collected while serving r.
func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	resp := httputil.Response{Data: data}
	if c := notify.CollectorFromContext(r.Context()); c != nil {
		if items := c.Items(); len(items) > 0 {
			resp.Notifications = items
		}
	}
	httputil.WriteJSON(w, status, resp)
}

// freshSession reports whether the session was minted for this request and
// so has nothing stored. Read handlers answer such requests with empty state
// instead of opening a store for a session that may never come back.
func freshSession(r *http.Request) bool {
	return middleware.IsNewSession(r.Context())
}
