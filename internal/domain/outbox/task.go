// Package outbox defines the durable sync queue domain model.
//
// A Task is one desired cross-system mutation. Tasks are created when a
// domain service commits locally and enqueues, and consumed by the drain
// loop. Tasks are retained forever; the sync log is the durable history,
// the task row is only current state.
package outbox

import (
	"time"

	"github.com/fieldstack/progsync/internal/domain/program"
)

// Operation is the kind of mutation a task carries outward.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether the operation is one of the closed set.
func (o Operation) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Status is the lifecycle state of a queue task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CanTransition reports whether moving from s to next is a legal
// state-machine edge. Completed is terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusFailed:
		// Manual or policy-driven requeue only.
		return next == StatusPending
	}
	return false
}

// Priority orders tasks within a drain batch. 1 is highest, 5 is the
// default assigned when callers do not care.
type Priority int

const (
	PriorityHighest Priority = 1
	PriorityHigh    Priority = 2
	PriorityNormal  Priority = 3
	PriorityLow     Priority = 4
	PriorityDefault Priority = 5
)

// Clamp normalizes out-of-range priorities into the 1..5 scale.
func (p Priority) Clamp() Priority {
	if p < PriorityHighest {
		return PriorityHighest
	}
	if p > PriorityDefault {
		return PriorityDefault
	}
	return p
}

// DefaultMaxRetries is the retry budget assigned to new tasks.
const DefaultMaxRetries = 3

// Task is one row of the outbox queue.
type Task struct {
	ID         string
	Operation  Operation
	EntityType program.EntityType
	EntityID   int64
	Priority   Priority
	Status     Status

	RetryCount int
	MaxRetries int

	ScheduledAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	// RemoteResponse is the raw JSON body returned by the remote system
	// for the successful call, kept opaque for audit.
	RemoteResponse string
	RemoteID       string
	LastError      string
}

// Dequeuable reports whether the task is visible to Dequeue: pending
// with retry budget left.
func (t *Task) Dequeuable() bool {
	return t.Status == StatusPending && t.RetryCount < t.MaxRetries
}

// Exhausted reports whether the task has burned its whole retry budget.
func (t *Task) Exhausted() bool {
	return t.RetryCount >= t.MaxRetries
}
