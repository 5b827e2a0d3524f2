package util

import (
	"net/http"
	"runtime/debug"
)

// WithRecover converts handler panics into opaque 500 responses. The panic
// value and stack are logged server-side; the client only ever sees the
// generic message.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFromContext(r.Context()).Error(
				"unexpected error",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"An unexpected error occurred. Please try again later."}`))
		}()
		next.ServeHTTP(w, r)
	})
}
