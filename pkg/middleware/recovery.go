package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/apper-canvas/stylehub-crypto-chip/pkg/errors"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httputil"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

var panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "stylehub",
	Name:      "http_panics_total",
	Help:      "Handler panics turned into 500 responses",
})

// Recovery turns a panic in a downstream handler into a 500 response. When
// the handler had already started writing, the connection is left as is and
// only the panic is logged.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				panicsTotal.Inc()
				logger.WithContext(r.Context(), l).ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", v),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				if !rec.wroteHeader {
					httputil.WriteError(rec, r, apperrors.Internal(fmt.Errorf("panic: %v", v)), l)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
