// ABOUTME: HTTP handlers for the agent dashboard API
// ABOUTME: Wires config, the task board, the guard pipeline and session auth together

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/markalston/agent-dashboard/cache"
	"github.com/markalston/agent-dashboard/config"
	"github.com/markalston/agent-dashboard/guard"
	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
	"github.com/markalston/agent-dashboard/services"
)

// Collaborator is the domain contract behind the dashboard. Errors of type
// *board.DomainError are reported to clients; anything else is a 500.
type Collaborator interface {
	GetAgentHealth(ctx context.Context, scope string) (models.AgentHealth, error)
	ListReviewQueue(ctx context.Context) ([]models.Task, error)
	ListNotifications(ctx context.Context, q models.NotificationQuery) ([]models.Notification, error)
	AckNotificationDelivery(ctx context.Context, ack models.DeliveryAck) (models.Notification, error)
	LinkDocumentToTask(ctx context.Context, l models.DocumentLink) (models.Task, error)
	AppendTaskLog(ctx context.Context, e models.TaskLogEntry) (models.TaskLog, error)
	TransitionTaskStatus(ctx context.Context, tr models.StatusTransition) (models.Task, error)
	ReleaseDependencies(ctx context.Context, r models.DependencyRelease) (models.ReleaseResult, error)
}

// Deps are the long-lived services a Handler uses. Nil fields are built from config.
type Deps struct {
	Board   Collaborator
	Limiter *middleware.RateLimiter
	Codec   *services.SessionCodec
	Health  *cache.Cache[models.AgentHealth]
}

type Handler struct {
	cfg      *config.Config
	board    Collaborator
	health   *cache.Cache[models.AgentHealth]
	limiter  *middleware.RateLimiter
	codec    *services.SessionCodec
	auth     middleware.AuthConfig
	pipeline *guard.Pipeline
}

// NewHandler builds the handler set. It fails when the configuration cannot
// produce a working guard layer.
func NewHandler(cfg *config.Config, deps Deps) (*Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("handlers: config is required")
	}
	if deps.Board == nil {
		return nil, fmt.Errorf("handlers: collaborator is required")
	}

	h := &Handler{
		cfg:     cfg,
		board:   deps.Board,
		health:  deps.Health,
		limiter: deps.Limiter,
		codec:   deps.Codec,
	}

	if h.health == nil {
		h.health = cache.New[models.AgentHealth](cfg.HealthCacheTTL)
	}
	if h.limiter == nil && cfg.RateLimitEnabled {
		h.limiter = middleware.NewRateLimiter(cfg.RateLimitMutations, cfg.RateLimitWindow)
	}
	if !cfg.RateLimitEnabled {
		h.limiter = nil
	}
	if h.codec == nil && cfg.SessionSecret != "" {
		codec, err := services.NewSessionCodec(cfg.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("handlers: %w", err)
		}
		h.codec = codec
	}
	if cfg.AuthEnabled && h.codec == nil {
		return nil, fmt.Errorf("handlers: auth enabled without a session codec")
	}

	h.auth = middleware.AuthConfig{
		Enabled: cfg.AuthEnabled,
		Cookie: services.SessionCookie{
			Name:        cfg.CookieName,
			SameSite:    cfg.CookieSameSite,
			ForceSecure: cfg.CookieSecure,
		},
	}
	if h.codec != nil {
		h.auth.Verifier = h.codec
	}

	validator, err := services.NewSchemaValidator(32)
	if err != nil {
		return nil, fmt.Errorf("handlers: %w", err)
	}

	operators := middleware.OperatorResolver{Header: cfg.OperatorHeader}
	h.pipeline, err = guard.New(guard.Options{
		Authorizer: middleware.NewMutationAuthorizer(cfg.MutationSecretHeader, cfg.MutationSecret),
		Limiter:    h.limiter,
		KeyFunc:    middleware.OperatorOrIP(cfg.OperatorHeader),
		Validator:  validator,
		Operators:  operators,
	})
	if err != nil {
		return nil, fmt.Errorf("handlers: %w", err)
	}

	if err := h.pipeline.Precompile(
		h.deliverNotificationMutation(),
		h.linkDocumentMutation(),
		h.appendLogMutation(),
		h.transitionStatusMutation(),
		h.releaseDependenciesMutation(),
	); err != nil {
		return nil, fmt.Errorf("handlers: %w", err)
	}

	return h, nil
}

// RateLimiter returns the mutation rate limiter, or nil when disabled.
func (h *Handler) RateLimiter() *middleware.RateLimiter {
	return h.limiter
}

// Close releases background resources.
func (h *Handler) Close() {
	h.health.Close()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	middleware.WriteJSONError(w, message, code)
}

// writeResult writes a read endpoint's result, or the client-facing form of its error.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		outcome := guard.FromError(err)
		if outcome.Kind == guard.Internal {
			slog.Error("Read failed", "path", r.URL.Path, "error", err)
		}
		outcome.Write(w)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
