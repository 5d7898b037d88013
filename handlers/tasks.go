// ABOUTME: Guarded task mutations: status transitions, logs, documents, dependency release
// ABOUTME: Each mutation declares its body schema and calls the collaborator with the resolved operator

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markalston/agent-dashboard/guard"
	"github.com/markalston/agent-dashboard/models"
	"github.com/markalston/agent-dashboard/services"
)

const operatorProperty = `"operator": {"type": "string", "maxLength": 128}`

const transitionStatusSchema = `{
	"type": "object",
	"required": ["toStatus"],
	"properties": {
		"toStatus": {"enum": ["inbox", "assigned", "in_progress", "in_review", "done", "blocked"]},
		"note": {"type": "string", "maxLength": 2000},
		` + operatorProperty + `
	},
	"additionalProperties": false
}`

const appendLogSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 10000},
		` + operatorProperty + `
	},
	"additionalProperties": false
}`

const linkDocumentSchema = `{
	"type": "object",
	"required": ["documentId"],
	"properties": {
		"documentId": {"type": "string", "minLength": 1, "maxLength": 256},
		` + operatorProperty + `
	},
	"additionalProperties": false
}`

const releaseDependenciesSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"enum": ["inbox", "assigned", "in_progress", "in_review", "done", "blocked"]},
		` + operatorProperty + `
	},
	"additionalProperties": false
}`

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task models.Task `json:"task"`
}

// TaskLogResponse wraps a created audit entry.
type TaskLogResponse struct {
	Log models.TaskLog `json:"log"`
}

// checkPathID reports a malformed {id} path parameter.
func checkPathID(r *http.Request) []models.FieldError {
	if err := services.ValidateID(chi.URLParam(r, "id")); err != nil {
		return []models.FieldError{{Path: "id", Message: "Invalid id format"}}
	}
	return nil
}

func (h *Handler) transitionStatusMutation() guard.Mutation {
	return guard.Mutation{
		Name:     "transition_task_status",
		Schema:   transitionStatusSchema,
		Fallback: h.cfg.DefaultStatusOperator,
		Check:    checkPathID,
		Invoke: func(ctx context.Context, req guard.Request) (any, error) {
			var body struct {
				ToStatus string `json:"toStatus"`
				Note     string `json:"note"`
			}
			if err := req.Decode(&body); err != nil {
				return nil, err
			}
			task, err := h.board.TransitionTaskStatus(ctx, models.StatusTransition{
				TaskID:   chi.URLParam(req.HTTP, "id"),
				ToStatus: body.ToStatus,
				Note:     body.Note,
				Operator: req.Operator,
			})
			if err != nil {
				return nil, err
			}
			return TaskResponse{Task: task}, nil
		},
	}
}

func (h *Handler) appendLogMutation() guard.Mutation {
	return guard.Mutation{
		Name:   "append_task_log",
		Schema: appendLogSchema,
		Check:  checkPathID,
		Invoke: func(ctx context.Context, req guard.Request) (any, error) {
			var body struct {
				Message string `json:"message"`
			}
			if err := req.Decode(&body); err != nil {
				return nil, err
			}
			entry, err := h.board.AppendTaskLog(ctx, models.TaskLogEntry{
				TaskID:   chi.URLParam(req.HTTP, "id"),
				Message:  body.Message,
				Operator: req.Operator,
			})
			if err != nil {
				return nil, err
			}
			return TaskLogResponse{Log: entry}, nil
		},
	}
}

func (h *Handler) linkDocumentMutation() guard.Mutation {
	return guard.Mutation{
		Name:   "link_document",
		Schema: linkDocumentSchema,
		Check:  checkPathID,
		Invoke: func(ctx context.Context, req guard.Request) (any, error) {
			var body struct {
				DocumentID string `json:"documentId"`
			}
			if err := req.Decode(&body); err != nil {
				return nil, err
			}
			task, err := h.board.LinkDocumentToTask(ctx, models.DocumentLink{
				TaskID:     chi.URLParam(req.HTTP, "id"),
				DocumentID: body.DocumentID,
				Operator:   req.Operator,
			})
			if err != nil {
				return nil, err
			}
			return TaskResponse{Task: task}, nil
		},
	}
}

func (h *Handler) releaseDependenciesMutation() guard.Mutation {
	return guard.Mutation{
		Name:   "release_dependencies",
		Schema: releaseDependenciesSchema,
		Invoke: func(ctx context.Context, req guard.Request) (any, error) {
			var body struct {
				Status string `json:"status"`
			}
			if err := req.Decode(&body); err != nil {
				return nil, err
			}
			return h.board.ReleaseDependencies(ctx, models.DependencyRelease{
				Status:   body.Status,
				Operator: req.Operator,
			})
		},
	}
}
