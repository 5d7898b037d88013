// ABOUTME: Read endpoints for agent health and the review queue
// ABOUTME: Agent health is cached per scope; concurrent misses share one board read

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
)

// AgentHealthResponse is returned by GET /api/agents/health.
type AgentHealthResponse struct {
	Health models.AgentHealth `json:"health"`
}

// ReviewQueueResponse is returned by GET /api/review-queue.
type ReviewQueueResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// AgentHealth returns agent liveness for scope=all (default) or scope=active_defaults.
func (h *Handler) AgentHealth(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = models.ScopeAll
	}
	if scope != models.ScopeAll && scope != models.ScopeActiveDefaults {
		middleware.WriteValidationError(w, []models.FieldError{
			{Path: "scope", Message: "Must be one of all, active_defaults"},
		})
		return
	}

	health, cached, err := h.health.GetOrLoad(r.Context(), "agent-health:"+scope, func(ctx context.Context) (models.AgentHealth, error) {
		return h.board.GetAgentHealth(ctx, scope)
	})
	if err == nil {
		slog.Debug("Agent health", "scope", scope, "cached", cached)
	}
	h.writeResult(w, r, AgentHealthResponse{Health: health}, err)
}

// ReviewQueue returns the tasks waiting for review.
func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.board.ListReviewQueue(r.Context())
	h.writeResult(w, r, ReviewQueueResponse{Tasks: tasks}, err)
}
