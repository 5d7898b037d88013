// ABOUTME: Assembles the chi router from the declarative route table
// ABOUTME: Adds panic recovery, CORS and JSON 404/405 responses

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markalston/agent-dashboard/middleware"
)

// NewRouter mounts every route of h with request logging.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recover)
	r.Use(middleware.CORS(h.cfg.CORSAllowedOrigins, h.cfg.MutationSecretHeader, h.cfg.OperatorHeader))

	for _, route := range h.Routes() {
		r.Method(route.Method, route.Path, middleware.Chain(route.Handler, middleware.LogRequest))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
