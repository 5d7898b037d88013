// ABOUTME: In-memory task board serving as the dashboard's domain collaborator
// ABOUTME: Holds tasks, audit logs, notifications and agents behind one RWMutex

package board

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markalston/agent-dashboard/models"
)

// Board is a goroutine-safe in-memory store of the dashboard's shared state.
type Board struct {
	mu            sync.RWMutex
	tasks         map[string]*models.Task
	logs          map[string][]models.TaskLog
	notifications map[string]*models.Notification
	agents        map[string]*models.Agent

	now   func() time.Time
	newID func() string
}

// Option customizes a Board.
type Option func(*Board)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithIDGenerator replaces the UUID generator used for new records.
func WithIDGenerator(newID func() string) Option {
	return func(b *Board) {
		b.newID = newID
	}
}

// New creates an empty board.
func New(opts ...Option) *Board {
	b := &Board{
		tasks:         make(map[string]*models.Task),
		logs:          make(map[string][]models.TaskLog),
		notifications: make(map[string]*models.Notification),
		agents:        make(map[string]*models.Agent),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddTask stores a task. The id must be unused.
func (b *Board) AddTask(t models.Task) error {
	if t.ID == "" {
		return invalid("task id is required")
	}
	if t.Status == "" {
		t.Status = models.StatusInbox
	}
	if !validTaskStatus(t.Status) {
		return invalid("unknown task status %q", t.Status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.tasks[t.ID]; exists {
		return invalid("task %s already exists", t.ID)
	}
	now := b.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	stored := cloneTask(t)
	b.tasks[t.ID] = &stored
	return nil
}

// AddNotification stores a notification, generating an id when empty.
// It returns the stored notification.
func (b *Board) AddNotification(n models.Notification) (models.Notification, error) {
	if n.Assignee == "" {
		return models.Notification{}, invalid("notification assignee is required")
	}
	if n.Status == "" {
		n.Status = models.DeliveryPending
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if n.ID == "" {
		n.ID = b.newID()
	}
	if _, exists := b.notifications[n.ID]; exists {
		return models.Notification{}, invalid("notification %s already exists", n.ID)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	stored := n
	b.notifications[n.ID] = &stored
	return stored, nil
}

// AddAgent registers or replaces an agent.
func (b *Board) AddAgent(a models.Agent) error {
	if a.Name == "" {
		return invalid("agent name is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := a
	b.agents[a.Name] = &stored
	return nil
}

// Heartbeat records that an agent is alive now.
func (b *Board) Heartbeat(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.agents[name]
	if !ok {
		return notFound("agent %s not found", name)
	}
	a.LastHeartbeat = b.now()
	return nil
}

// Task returns a copy of a task.
func (b *Board) Task(id string) (models.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tasks[id]
	if !ok {
		return models.Task{}, notFound("task %s not found", id)
	}
	return cloneTask(*t), nil
}

// TaskLogs returns a task's audit trail, oldest first.
func (b *Board) TaskLogs(id string) ([]models.TaskLog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.tasks[id]; !ok {
		return nil, notFound("task %s not found", id)
	}
	return slices.Clone(b.logs[id]), nil
}

// appendLog records an audit entry. Callers hold b.mu.
func (b *Board) appendLog(taskID, message, operator string, at time.Time) models.TaskLog {
	entry := models.TaskLog{
		ID:        b.newID(),
		TaskID:    taskID,
		Message:   message,
		Operator:  operator,
		CreatedAt: at,
	}
	b.logs[taskID] = append(b.logs[taskID], entry)
	return entry
}

func cloneTask(t models.Task) models.Task {
	t.Documents = slices.Clone(t.Documents)
	t.Dependencies = slices.Clone(t.Dependencies)
	if t.Documents == nil {
		t.Documents = []string{}
	}
	if t.Dependencies == nil {
		t.Dependencies = []string{}
	}
	return t
}

func validTaskStatus(status string) bool {
	return slices.Contains(models.TaskStatuses, status)
}
