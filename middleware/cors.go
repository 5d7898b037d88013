// ABOUTME: CORS middleware for browser dashboards on other origins
// ABOUTME: Wraps go-chi/cors; no origins configured means cross-origin requests get no CORS headers

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSOptions returns the CORS policy for the dashboard API. The mutation
// secret and operator headers must be allowed for browser writes.
func CORSOptions(origins []string, extraHeaders ...string) cors.Options {
	headers := append([]string{"Content-Type", "X-Request-ID"}, extraHeaders...)
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// CORS returns middleware applying the policy for origins.
func CORS(origins []string, extraHeaders ...string) func(http.Handler) http.Handler {
	// go-chi/cors allows every origin when the list is empty.
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(CORSOptions(origins, extraHeaders...))
}
