package middleware

import "net/http"

// MaxBody limits the size of inbound request bodies.
// Oversized bodies surface as decode errors in the handlers, which map
// them to 400 responses.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
