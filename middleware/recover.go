// ABOUTME: Panic recovery at the outermost HTTP boundary
// ABOUTME: Converts unexpected faults into a generic JSON 500 without internal detail

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover catches panics from next and answers 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("Panic serving request",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
