// ABOUTME: Tests for the in-memory task board
// ABOUTME: Covers transitions, logs, documents, releases, notifications and agent health

package board

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/agent-dashboard/models"
)

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBoard(t *testing.T) (*Board, *testClock) {
	t.Helper()
	clock := &testClock{now: testNow}
	seq := 0
	var seqMu sync.Mutex
	b := New(WithClock(clock.Now), WithIDGenerator(func() string {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return fmt.Sprintf("id-%d", seq)
	}))
	require.NoError(t, b.SeedDemo())
	return b, clock
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, kind, de.Kind, "error %q", de.Message)
}

func TestTransitionTaskStatus(t *testing.T) {
	b, clock := newTestBoard(t)
	ctx := context.Background()
	clock.Advance(time.Minute)

	task, err := b.TransitionTaskStatus(ctx, models.StatusTransition{
		TaskID: "t1", ToStatus: models.StatusInReview, Note: "ready", Operator: "garry",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInReview, task.Status)
	assert.Equal(t, "garry", task.UpdatedBy)
	assert.Equal(t, clock.Now(), task.UpdatedAt)

	logs, err := b.TaskLogs("t1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Status changed from in_progress to in_review: ready", logs[0].Message)
	assert.Equal(t, "garry", logs[0].Operator)
}

func TestTransitionTaskStatus_Errors(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	_, err := b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "missing", ToStatus: models.StatusDone})
	requireKind(t, err, KindNotFound)

	_, err = b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t1", ToStatus: "archived"})
	requireKind(t, err, KindInvalid)

	_, err = b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t1", ToStatus: models.StatusInProgress})
	requireKind(t, err, KindInvalid)

	_, err = b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t5", ToStatus: models.StatusInReview})
	requireKind(t, err, KindInvalid)

	task, err := b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t5", ToStatus: models.StatusInProgress, Operator: "garry"})
	require.NoError(t, err, "done tasks can be reopened")
	assert.Equal(t, models.StatusInProgress, task.Status)

	logs, err := b.TaskLogs("t1")
	require.NoError(t, err)
	assert.Empty(t, logs, "failed transitions must not write audit entries")
}

func TestAppendTaskLog(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	entry, err := b.AppendTaskLog(ctx, models.TaskLogEntry{TaskID: "t2", Message: "  looks good  ", Operator: "reviewer"})
	require.NoError(t, err)
	assert.Equal(t, "looks good", entry.Message)
	assert.Equal(t, "reviewer", entry.Operator)
	assert.NotEmpty(t, entry.ID)

	_, err = b.AppendTaskLog(ctx, models.TaskLogEntry{TaskID: "t2", Message: "   "})
	requireKind(t, err, KindInvalid)

	_, err = b.AppendTaskLog(ctx, models.TaskLogEntry{TaskID: "nope", Message: "x"})
	requireKind(t, err, KindNotFound)
}

func TestLinkDocumentToTask_Idempotent(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task, err := b.LinkDocumentToTask(ctx, models.DocumentLink{TaskID: "t1", DocumentID: "doc-9", Operator: "writer"})
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-9"}, task.Documents)
	}

	logs, err := b.TaskLogs("t1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = b.LinkDocumentToTask(ctx, models.DocumentLink{TaskID: "t1", DocumentID: ""})
	requireKind(t, err, KindInvalid)
	_, err = b.LinkDocumentToTask(ctx, models.DocumentLink{TaskID: "nope", DocumentID: "d"})
	requireKind(t, err, KindNotFound)
}

func TestTask_ReturnsCopy(t *testing.T) {
	b, _ := newTestBoard(t)

	task, err := b.LinkDocumentToTask(context.Background(), models.DocumentLink{TaskID: "t1", DocumentID: "doc-1"})
	require.NoError(t, err)
	task.Documents[0] = "mutated"

	stored, err := b.Task("t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, stored.Documents)
}

func TestReleaseDependencies(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	res, err := b.ReleaseDependencies(ctx, models.DependencyRelease{Status: models.StatusDone, Operator: "garry"})
	require.NoError(t, err)
	assert.Empty(t, res.Released)
	assert.NotNil(t, res.Released)

	_, err = b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t1", ToStatus: models.StatusDone})
	require.NoError(t, err)

	res, err = b.ReleaseDependencies(ctx, models.DependencyRelease{Status: models.StatusDone, Operator: "garry"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, res.Released, "t4 still waits on t2")

	t3, err := b.Task("t3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, t3.Status)
	assert.Equal(t, "garry", t3.UpdatedBy)

	_, err = b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t2", ToStatus: models.StatusDone})
	require.NoError(t, err)
	res, err = b.ReleaseDependencies(ctx, models.DependencyRelease{Status: models.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, []string{"t4"}, res.Released)

	t4, err := b.Task("t4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInbox, t4.Status, "unassigned tasks go back to the inbox")

	_, err = b.ReleaseDependencies(ctx, models.DependencyRelease{Status: "finished"})
	requireKind(t, err, KindInvalid)
}

func TestReleaseDependencies_UnknownDependencyNeverSatisfied(t *testing.T) {
	b := New(WithClock(func() time.Time { return testNow }))
	require.NoError(t, b.AddTask(models.Task{ID: "a", Status: models.StatusBlocked, Dependencies: []string{"ghost"}}))
	require.NoError(t, b.AddTask(models.Task{ID: "b", Status: models.StatusBlocked}))

	res, err := b.ReleaseDependencies(context.Background(), models.DependencyRelease{Status: models.StatusDone})
	require.NoError(t, err)
	assert.Empty(t, res.Released)
}

func TestListReviewQueue(t *testing.T) {
	b, clock := newTestBoard(t)
	ctx := context.Background()

	clock.Advance(time.Minute)
	_, err := b.TransitionTaskStatus(ctx, models.StatusTransition{TaskID: "t1", ToStatus: models.StatusInReview})
	require.NoError(t, err)

	queue, err := b.ListReviewQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "t2", queue[0].ID, "longest waiting first")
	assert.Equal(t, "t1", queue[1].ID)
}

func TestListNotifications(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	all, err := b.ListNotifications(ctx, models.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"n3", "n2", "n1"}, ids(all), "newest first")

	writer, err := b.ListNotifications(ctx, models.NotificationQuery{Assignee: "writer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n1"}, ids(writer))

	failed, err := b.ListNotifications(ctx, models.NotificationQuery{Status: models.DeliveryFailed})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, ids(failed))

	older, err := b.ListNotifications(ctx, models.NotificationQuery{Before: all[0].CreatedAt, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, ids(older))
}

func ids(ns []models.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestAckNotificationDelivery(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	failed, err := b.AckNotificationDelivery(ctx, models.DeliveryAck{NotificationID: "n1", Status: models.DeliveryFailed, Operator: "notification-worker"})
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryFailed, failed.Status)
	assert.Equal(t, 1, failed.Attempts)
	assert.Equal(t, "delivery failed", failed.Error)
	assert.Nil(t, failed.DeliveredAt)

	delivered, err := b.AckNotificationDelivery(ctx, models.DeliveryAck{NotificationID: "n1", Status: models.DeliveryDelivered, Operator: "notification-worker"})
	require.NoError(t, err)
	assert.Equal(t, 2, delivered.Attempts)
	assert.Empty(t, delivered.Error)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, "notification-worker", delivered.AckedBy)

	_, err = b.AckNotificationDelivery(ctx, models.DeliveryAck{NotificationID: "n1", Status: models.DeliveryDelivered})
	requireKind(t, err, KindInvalid)

	_, err = b.AckNotificationDelivery(ctx, models.DeliveryAck{NotificationID: "n2", Status: models.DeliveryPending})
	requireKind(t, err, KindInvalid)

	_, err = b.AckNotificationDelivery(ctx, models.DeliveryAck{NotificationID: "zzz", Status: models.DeliveryDelivered})
	requireKind(t, err, KindNotFound)
}

func TestGetAgentHealth(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	all, err := b.GetAgentHealth(ctx, models.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, 4, len(all.Agents))
	assert.Equal(t, 2, all.Healthy)
	assert.Equal(t, 1, all.Stale)
	assert.Equal(t, 1, all.Offline)

	defaults, err := b.GetAgentHealth(ctx, models.ScopeActiveDefaults)
	require.NoError(t, err)
	require.Len(t, defaults.Agents, 2)
	assert.Equal(t, "garry", defaults.Agents[0].Name)
	assert.Equal(t, HealthHealthy, defaults.Agents[0].Health)
	assert.Equal(t, "notification-worker", defaults.Agents[1].Name)
	assert.Equal(t, HealthStale, defaults.Agents[1].Health)

	empty, err := b.GetAgentHealth(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.ScopeAll, empty.Scope)

	_, err = b.GetAgentHealth(ctx, "everyone")
	requireKind(t, err, KindInvalid)
}

func TestHeartbeat(t *testing.T) {
	b, clock := newTestBoard(t)
	ctx := context.Background()

	require.NoError(t, b.Heartbeat("archiver"))
	clock.Advance(HealthyWithin + time.Second)

	health, err := b.GetAgentHealth(ctx, models.ScopeAll)
	require.NoError(t, err)
	for _, a := range health.Agents {
		if a.Name == "archiver" {
			assert.Equal(t, HealthStale, a.Health)
		}
	}

	requireKind(t, b.Heartbeat("ghost"), KindNotFound)
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, HealthHealthy, classify(HealthyWithin))
	assert.Equal(t, HealthStale, classify(HealthyWithin+time.Nanosecond))
	assert.Equal(t, HealthStale, classify(StaleWithin))
	assert.Equal(t, HealthOffline, classify(StaleWithin+time.Nanosecond))
}

func TestAddRecordValidation(t *testing.T) {
	b := New()

	requireKind(t, b.AddTask(models.Task{}), KindInvalid)
	requireKind(t, b.AddTask(models.Task{ID: "x", Status: "weird"}), KindInvalid)
	require.NoError(t, b.AddTask(models.Task{ID: "x"}))
	requireKind(t, b.AddTask(models.Task{ID: "x"}), KindInvalid)

	_, err := b.AddNotification(models.Notification{})
	requireKind(t, err, KindInvalid)

	n, err := b.AddNotification(models.Notification{Assignee: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.DeliveryPending, n.Status)

	requireKind(t, b.AddAgent(models.Agent{}), KindInvalid)
	assert.True(t, IsNotFound(b.Heartbeat("nobody")))
}

func TestConcurrentMutations(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := b.AppendTaskLog(ctx, models.TaskLogEntry{TaskID: "t6", Message: fmt.Sprintf("entry %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	logs, err := b.TaskLogs("t6")
	require.NoError(t, err)
	assert.Len(t, logs, 50)
}
