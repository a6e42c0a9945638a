package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

// HeaderSessionID identifies an anonymous shopper. Cart, wishlist and recent
// searches are scoped to it.
const HeaderSessionID = "X-Session-ID"

type newSessionKey struct{}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// SessionID reads the shopper session from X-Session-ID. A missing header
// starts a new session whose id is echoed back in the response header; a
// malformed one is rejected with 400.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := r.Header.Get(HeaderSessionID)
		if sid == "" {
			sid = uuid.New().String()
			ctx = context.WithValue(ctx, newSessionKey{}, true)
		} else if !sessionIDPattern.MatchString(sid) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_SESSION", Message: "X-Session-ID is malformed"},
			})
			return
		}

		w.Header().Set(HeaderSessionID, sid)
		ctx = logger.WithSessionID(ctx, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsNewSession reports whether SessionID minted the session for this request.
// Such a session has no stored state yet.
func IsNewSession(ctx context.Context) bool {
	isNew, _ := ctx.Value(newSessionKey{}).(bool)
	return isNew
}
