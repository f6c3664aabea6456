// Package ports defines the interfaces between the sync engine and its
// adapters: the outbox queue, the remote gateway, local entity and
// mirror storage, and the audit log.
package ports

import (
	"context"

	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// EnqueueRequest is the narrow contract every domain service uses to
// request a push after a local commit.
type EnqueueRequest struct {
	EntityType program.EntityType
	EntityID   int64
	Operation  outbox.Operation
	Priority   outbox.Priority
}

// Queue is the durable outbox of pending cross-system mutations.
type Queue interface {
	// Enqueue inserts a pending task and returns immediately. There is
	// no coupling to the caller's transaction.
	Enqueue(ctx context.Context, req EnqueueRequest) (*outbox.Task, error)

	// Dequeue returns up to batchSize pending tasks with retry budget
	// left, ordered by (priority ASC, scheduled_at ASC).
	Dequeue(ctx context.Context, batchSize int) ([]*outbox.Task, error)

	// Get returns one task by id.
	Get(ctx context.Context, id string) (*outbox.Task, error)

	// MarkProcessing transitions a pending task to processing and
	// stamps started_at.
	MarkProcessing(ctx context.Context, id string) error

	// MarkCompleted finalizes a processing task with the remote id and
	// the opaque remote response.
	MarkCompleted(ctx context.Context, id, remoteID, response string) error

	// MarkFailed transitions a processing task to failed, increments
	// retry_count, and records the error message.
	MarkFailed(ctx context.Context, id, lastError string) error

	// Requeue returns a failed task with budget left to pending. Used
	// by the requeue retry policy and the manual queue command.
	Requeue(ctx context.Context, id string, delaySeconds int) error

	// RequeueFailed applies Requeue to every failed task with budget
	// left, using the policy's backoff. Returns the number requeued.
	RequeueFailed(ctx context.Context, policy outbox.RetryPolicy) (int, error)

	// List returns tasks filtered by status (empty = all), newest first.
	List(ctx context.Context, status outbox.Status, limit int) ([]*outbox.Task, error)

	// PendingCount returns the number of dequeuable tasks.
	PendingCount(ctx context.Context) (int, error)
}
