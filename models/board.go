// ABOUTME: Task board models exchanged with the domain collaborator
// ABOUTME: Tasks, audit logs, notifications, agents and the mutation request payloads

package models

import "time"

// Task statuses
const (
	StatusInbox      = "inbox"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusInReview   = "in_review"
	StatusDone       = "done"
	StatusBlocked    = "blocked"
)

// TaskStatuses lists every valid task status.
var TaskStatuses = []string{
	StatusInbox, StatusAssigned, StatusInProgress, StatusInReview, StatusDone, StatusBlocked,
}

// Notification delivery statuses
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Agent health scopes
const (
	ScopeAll            = "all"
	ScopeActiveDefaults = "active_defaults"
)

// Task is a unit of work handled by an agent.
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Assignee     string    `json:"assignee,omitempty"`
	Documents    []string  `json:"documents"`
	Dependencies []string  `json:"dependencies"`
	UpdatedBy    string    `json:"updatedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TaskLog is one audit trail entry of a task.
type TaskLog struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	Message   string    `json:"message"`
	Operator  string    `json:"operator"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is a message queued for an assignee.
type Notification struct {
	ID          string     `json:"id"`
	Assignee    string     `json:"assignee"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	AckedBy     string     `json:"ackedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

// Agent is an autonomous worker reporting heartbeats.
type Agent struct {
	Name          string    `json:"name"`
	IsDefault     bool      `json:"isDefault"`
	Active        bool      `json:"active"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
}

// AgentStatus is an agent with its derived health state.
type AgentStatus struct {
	Agent
	Health string `json:"health"` // healthy, stale, offline
}

// AgentHealth summarizes agent liveness for a scope.
type AgentHealth struct {
	Scope     string        `json:"scope"`
	Agents    []AgentStatus `json:"agents"`
	Healthy   int           `json:"healthy"`
	Stale     int           `json:"stale"`
	Offline   int           `json:"offline"`
	CheckedAt time.Time     `json:"checkedAt"`
}

// NotificationQuery filters the notification listing. Zero values mean "any".
type NotificationQuery struct {
	Assignee string
	Status   string
	Before   time.Time
	Limit    int
}

// DeliveryAck records the outcome of a notification delivery attempt.
type DeliveryAck struct {
	NotificationID string
	Status         string
	Error          string
	Operator       string
}

// DocumentLink attaches a document to a task.
type DocumentLink struct {
	TaskID     string
	DocumentID string
	Operator   string
}

// TaskLogEntry appends a message to a task's audit trail.
type TaskLogEntry struct {
	TaskID   string
	Message  string
	Operator string
}

// StatusTransition moves a task to a new status.
type StatusTransition struct {
	TaskID   string
	ToStatus string
	Note     string
	Operator string
}

// DependencyRelease unblocks tasks whose dependencies all reached Status.
type DependencyRelease struct {
	Status   string
	Operator string
}

// ReleaseResult lists the tasks that were unblocked.
type ReleaseResult struct {
	Released []string `json:"released"`
}
