package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vocoweb/gateway/internal/metrics"
)

// Metrics returns a middleware that records one counter increment per
// handled request, labeled by chi route pattern and response status.
// The route pattern keeps label cardinality bounded (path IDs collapse
// into their placeholder).
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			recorder.IncGatewayRequest(route, wrapped.status)
		})
	}
}
