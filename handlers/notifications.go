// ABOUTME: Notification listing and the guarded delivery acknowledgement
// ABOUTME: Validates listing query parameters and reports them like body validation failures

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/markalston/agent-dashboard/guard"
	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
)

// Notification listing bounds
const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

const deliverNotificationSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"enum": ["delivered", "failed"]},
		"error": {"type": "string", "maxLength": 2000},
		` + operatorProperty + `
	},
	"additionalProperties": false
}`

// NotificationsResponse is returned by GET /api/notifications.
type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
}

// NotificationResponse wraps a single notification.
type NotificationResponse struct {
	Notification models.Notification `json:"notification"`
}

// ListNotifications returns notifications filtered by assignee, status and
// creation time, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q, details := parseNotificationQuery(r)
	if len(details) > 0 {
		middleware.WriteValidationError(w, details)
		return
	}

	notifications, err := h.board.ListNotifications(r.Context(), q)
	h.writeResult(w, r, NotificationsResponse{Notifications: notifications}, err)
}

func parseNotificationQuery(r *http.Request) (models.NotificationQuery, []models.FieldError) {
	values := r.URL.Query()
	q := models.NotificationQuery{
		Assignee: values.Get("assignee"),
		Status:   values.Get("status"),
		Limit:    defaultNotificationLimit,
	}
	var details []models.FieldError

	if len(q.Assignee) > 128 {
		details = append(details, models.FieldError{Path: "assignee", Message: "Must be at most 128 characters"})
	}

	switch q.Status {
	case "", models.DeliveryPending, models.DeliveryDelivered, models.DeliveryFailed:
	default:
		details = append(details, models.FieldError{Path: "status", Message: "Must be one of pending, delivered, failed"})
	}

	if raw := values.Get("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			details = append(details, models.FieldError{Path: "before", Message: "Must be an RFC 3339 timestamp"})
		}
		q.Before = before
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxNotificationLimit {
			details = append(details, models.FieldError{Path: "limit", Message: "Must be an integer between 1 and 200"})
		}
		q.Limit = limit
	}

	return q, details
}

func (h *Handler) deliverNotificationMutation() guard.Mutation {
	return guard.Mutation{
		Name:     "ack_notification_delivery",
		Schema:   deliverNotificationSchema,
		Fallback: h.cfg.DefaultDeliveryOperator,
		Check:    checkPathID,
		Invoke: func(ctx context.Context, req guard.Request) (any, error) {
			var body struct {
				Status string `json:"status"`
				Error  string `json:"error"`
			}
			if err := req.Decode(&body); err != nil {
				return nil, err
			}
			n, err := h.board.AckNotificationDelivery(ctx, models.DeliveryAck{
				NotificationID: chi.URLParam(req.HTTP, "id"),
				Status:         body.Status,
				Error:          body.Error,
				Operator:       req.Operator,
			})
			if err != nil {
				return nil, err
			}
			return NotificationResponse{Notification: n}, nil
		},
	}
}
