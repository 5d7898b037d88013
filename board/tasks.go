// ABOUTME: Task mutations and the review queue
// ABOUTME: Status transitions, audit log appends, document links and dependency release

package board

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/markalston/agent-dashboard/models"
)

// ListReviewQueue returns tasks awaiting review, longest waiting first.
func (b *Board) ListReviewQueue(_ context.Context) ([]models.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	queue := []models.Task{}
	for _, t := range b.tasks {
		if t.Status == models.StatusInReview {
			queue = append(queue, cloneTask(*t))
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		if !queue[i].UpdatedAt.Equal(queue[j].UpdatedAt) {
			return queue[i].UpdatedAt.Before(queue[j].UpdatedAt)
		}
		return queue[i].ID < queue[j].ID
	})
	return queue, nil
}

// TransitionTaskStatus moves a task to a new status and records the change in
// its audit trail. A done task can only be reopened to in_progress.
func (b *Board) TransitionTaskStatus(_ context.Context, tr models.StatusTransition) (models.Task, error) {
	if !validTaskStatus(tr.ToStatus) {
		return models.Task{}, invalid("unknown task status %q", tr.ToStatus)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[tr.TaskID]
	if !ok {
		return models.Task{}, notFound("task %s not found", tr.TaskID)
	}
	from := t.Status
	if from == tr.ToStatus {
		return models.Task{}, invalid("task %s is already %s", t.ID, from)
	}
	if from == models.StatusDone && tr.ToStatus != models.StatusInProgress {
		return models.Task{}, invalid("task %s is done and can only be reopened to %s", t.ID, models.StatusInProgress)
	}

	now := b.now()
	t.Status = tr.ToStatus
	t.UpdatedBy = tr.Operator
	t.UpdatedAt = now

	message := fmt.Sprintf("Status changed from %s to %s", from, tr.ToStatus)
	if note := strings.TrimSpace(tr.Note); note != "" {
		message += ": " + note
	}
	b.appendLog(t.ID, message, tr.Operator, now)

	return cloneTask(*t), nil
}

// AppendTaskLog adds a free-form entry to a task's audit trail.
func (b *Board) AppendTaskLog(_ context.Context, e models.TaskLogEntry) (models.TaskLog, error) {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		return models.TaskLog{}, invalid("log message must not be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tasks[e.TaskID]; !ok {
		return models.TaskLog{}, notFound("task %s not found", e.TaskID)
	}
	return b.appendLog(e.TaskID, message, e.Operator, b.now()), nil
}

// LinkDocumentToTask attaches a document to a task. Linking an already linked
// document changes nothing.
func (b *Board) LinkDocumentToTask(_ context.Context, l models.DocumentLink) (models.Task, error) {
	docID := strings.TrimSpace(l.DocumentID)
	if docID == "" {
		return models.Task{}, invalid("document id must not be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[l.TaskID]
	if !ok {
		return models.Task{}, notFound("task %s not found", l.TaskID)
	}
	if slices.Contains(t.Documents, docID) {
		return cloneTask(*t), nil
	}

	now := b.now()
	t.Documents = append(t.Documents, docID)
	t.UpdatedBy = l.Operator
	t.UpdatedAt = now
	b.appendLog(t.ID, "Linked document "+docID, l.Operator, now)

	return cloneTask(*t), nil
}

// ReleaseDependencies unblocks every blocked task whose dependencies all have
// the requested status. Released tasks go to assigned, or inbox when nobody is
// assigned. Unknown dependencies never count as satisfied.
func (b *Board) ReleaseDependencies(_ context.Context, r models.DependencyRelease) (models.ReleaseResult, error) {
	if !validTaskStatus(r.Status) {
		return models.ReleaseResult{}, invalid("unknown task status %q", r.Status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	result := models.ReleaseResult{Released: []string{}}
	now := b.now()
	for _, t := range b.tasks {
		if t.Status != models.StatusBlocked || !b.dependenciesReached(t, r.Status) {
			continue
		}

		t.Status = models.StatusAssigned
		if t.Assignee == "" {
			t.Status = models.StatusInbox
		}
		t.UpdatedBy = r.Operator
		t.UpdatedAt = now
		b.appendLog(t.ID, fmt.Sprintf("Released from blocked to %s: dependencies %s", t.Status, r.Status), r.Operator, now)
		result.Released = append(result.Released, t.ID)
	}
	sort.Strings(result.Released)
	return result, nil
}

// dependenciesReached reports whether t has dependencies and all are in status.
// Callers hold b.mu.
func (b *Board) dependenciesReached(t *models.Task, status string) bool {
	if len(t.Dependencies) == 0 {
		return false
	}
	for _, id := range t.Dependencies {
		dep, ok := b.tasks[id]
		if !ok || dep.Status != status {
			return false
		}
	}
	return true
}
