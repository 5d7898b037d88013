// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import (
	"net/http"

	"github.com/markalston/agent-dashboard/middleware"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path with chi parameters (e.g., "/api/tasks/{id}/logs")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration. Reads require a session when
// auth is enabled; writes go through the guard pipeline.
func (h *Handler) Routes() []Route {
	session := middleware.RequireSession(h.auth)

	return []Route{
		// Service
		{Method: http.MethodGet, Path: "/api/health", Handler: h.Health},
		{Method: http.MethodGet, Path: "/api/openapi.yaml", Handler: h.OpenAPISpec},

		// Auth
		{Method: http.MethodGet, Path: "/api/auth/me", Handler: session(h.Me)},
		{Method: http.MethodPost, Path: "/api/auth/logout", Handler: h.Logout},

		// Reads
		{Method: http.MethodGet, Path: "/api/agents/health", Handler: session(h.AgentHealth)},
		{Method: http.MethodGet, Path: "/api/review-queue", Handler: session(h.ReviewQueue)},
		{Method: http.MethodGet, Path: "/api/notifications", Handler: session(h.ListNotifications)},

		// Guarded mutations
		{Method: http.MethodPost, Path: "/api/notifications/{id}/deliver", Handler: h.pipeline.Handler(h.deliverNotificationMutation())},
		{Method: http.MethodPost, Path: "/api/tasks/{id}/documents", Handler: h.pipeline.Handler(h.linkDocumentMutation())},
		{Method: http.MethodPost, Path: "/api/tasks/{id}/logs", Handler: h.pipeline.Handler(h.appendLogMutation())},
		{Method: http.MethodPatch, Path: "/api/tasks/{id}/status", Handler: h.pipeline.Handler(h.transitionStatusMutation())},
		{Method: http.MethodPost, Path: "/api/tasks/release-dependencies", Handler: h.pipeline.Handler(h.releaseDependenciesMutation())},
	}
}
