// ABOUTME: Demo records for local development and end-to-end tests
// ABOUTME: A small task graph, a few notifications and the default agents

package board

import (
	"time"

	"github.com/markalston/agent-dashboard/models"
)

// SeedDemo loads a fixed set of demo records relative to the board clock.
func (b *Board) SeedDemo() error {
	now := b.now()
	ago := func(d time.Duration) time.Time { return now.Add(-d) }

	tasks := []models.Task{
		{ID: "t1", Title: "Draft onboarding guide", Status: models.StatusInProgress, Assignee: "writer", CreatedAt: ago(3 * time.Hour)},
		{ID: "t2", Title: "Review pricing page copy", Status: models.StatusInReview, Assignee: "writer", CreatedAt: ago(2 * time.Hour)},
		{ID: "t3", Title: "Publish onboarding guide", Status: models.StatusBlocked, Assignee: "publisher", Dependencies: []string{"t1"}, CreatedAt: ago(time.Hour)},
		{ID: "t4", Title: "Announce launch", Status: models.StatusBlocked, Dependencies: []string{"t1", "t2"}, CreatedAt: ago(time.Hour)},
		{ID: "t5", Title: "Collect launch metrics", Status: models.StatusDone, Assignee: "analyst", CreatedAt: ago(24 * time.Hour)},
		{ID: "t6", Title: "Triage inbound requests", Status: models.StatusInbox, CreatedAt: ago(30 * time.Minute)},
	}
	for _, t := range tasks {
		if err := b.AddTask(t); err != nil {
			return err
		}
	}

	notifications := []models.Notification{
		{ID: "n1", Assignee: "writer", Message: "Task t2 is ready for review", CreatedAt: ago(90 * time.Minute)},
		{ID: "n2", Assignee: "publisher", Message: "Task t3 is blocked on t1", Status: models.DeliveryFailed, Attempts: 1, Error: "webhook timeout", CreatedAt: ago(50 * time.Minute)},
		{ID: "n3", Assignee: "writer", Message: "New comment on t1", CreatedAt: ago(10 * time.Minute)},
	}
	for _, n := range notifications {
		if _, err := b.AddNotification(n); err != nil {
			return err
		}
	}

	agents := []models.Agent{
		{Name: "garry", IsDefault: true, Active: true, LastHeartbeat: ago(30 * time.Second)},
		{Name: "notification-worker", IsDefault: true, Active: true, LastHeartbeat: ago(5 * time.Minute)},
		{Name: "writer", Active: true, LastHeartbeat: ago(time.Minute)},
		{Name: "archiver", IsDefault: true, Active: false, LastHeartbeat: ago(2 * time.Hour)},
	}
	for _, a := range agents {
		if err := b.AddAgent(a); err != nil {
			return err
		}
	}
	return nil
}
