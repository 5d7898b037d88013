// ABOUTME: Notification listing and delivery acknowledgements
// ABOUTME: Newest-first paging by creation time; acks record attempts and outcome

package board

import (
	"context"
	"sort"

	"github.com/markalston/agent-dashboard/models"
)

// DefaultNotificationLimit applies when a query has no limit.
const DefaultNotificationLimit = 50

// ListNotifications returns matching notifications, newest first.
func (b *Board) ListNotifications(_ context.Context, q models.NotificationQuery) ([]models.Notification, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []models.Notification{}
	for _, n := range b.notifications {
		if q.Assignee != "" && n.Assignee != q.Assignee {
			continue
		}
		if q.Status != "" && n.Status != q.Status {
			continue
		}
		if !q.Before.IsZero() && !n.CreatedAt.Before(q.Before) {
			continue
		}
		out = append(out, *n)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AckNotificationDelivery records a delivery attempt. A delivered notification
// cannot be acknowledged again; a failed one can be retried.
func (b *Board) AckNotificationDelivery(_ context.Context, ack models.DeliveryAck) (models.Notification, error) {
	if ack.Status != models.DeliveryDelivered && ack.Status != models.DeliveryFailed {
		return models.Notification{}, invalid("delivery status must be %s or %s", models.DeliveryDelivered, models.DeliveryFailed)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.notifications[ack.NotificationID]
	if !ok {
		return models.Notification{}, notFound("notification %s not found", ack.NotificationID)
	}
	if n.Status == models.DeliveryDelivered {
		return models.Notification{}, invalid("notification %s was already delivered", n.ID)
	}

	now := b.now()
	n.Attempts++
	n.Status = ack.Status
	n.AckedBy = ack.Operator
	if ack.Status == models.DeliveryDelivered {
		n.DeliveredAt = &now
		n.Error = ""
	} else {
		n.Error = ack.Error
		if n.Error == "" {
			n.Error = "delivery failed"
		}
	}
	return *n, nil
}
