// ABOUTME: HTTP handler for the service health endpoint
// ABOUTME: Reports which guard mechanisms are active without exposing secrets

package handlers

import (
	"net/http"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status              string          `json:"status"`
	AuthEnabled         bool            `json:"auth_enabled"`
	MutationsConfigured bool            `json:"mutations_configured"`
	RateLimit           RateLimitStatus `json:"rate_limit"`
}

// RateLimitStatus describes the mutation rate limiter.
type RateLimitStatus struct {
	Enabled       bool `json:"enabled"`
	MaxPerWindow  int  `json:"max_per_window,omitempty"`
	WindowSeconds int  `json:"window_seconds,omitempty"`
	Buckets       int  `json:"buckets"`
}

// Health returns API health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:              "ok",
		AuthEnabled:         h.cfg.AuthEnabled,
		MutationsConfigured: h.cfg.MutationsConfigured(),
	}

	if h.limiter != nil {
		resp.RateLimit = RateLimitStatus{
			Enabled:       true,
			MaxPerWindow:  h.limiter.Limit(),
			WindowSeconds: int(h.limiter.Window().Seconds()),
			Buckets:       h.limiter.Len(),
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
