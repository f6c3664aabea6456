package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// QueueRepository implements ports.Queue on the sync_tasks table.
type QueueRepository struct {
	conn *Connection
}

// NewQueueRepository creates a new queue repository.
func NewQueueRepository(conn *Connection) *QueueRepository {
	return &QueueRepository{conn: conn}
}

const taskColumns = `id, operation, entity_type, entity_id, priority, status,
	retry_count, max_retries, scheduled_at, started_at, completed_at,
	remote_response, remote_id, last_error`

// Enqueue inserts a pending task and returns it.
func (r *QueueRepository) Enqueue(ctx context.Context, req ports.EnqueueRequest) (*outbox.Task, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	if !req.EntityType.Valid() {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrUnknownEntityType, req.EntityType)
	}
	if !req.Operation.Valid() {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrUnknownOperation, req.Operation)
	}

	priority := req.Priority
	if priority == 0 {
		priority = outbox.PriorityDefault
	}

	task := &outbox.Task{
		ID:          uuid.NewString(),
		Operation:   req.Operation,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Priority:    priority.Clamp(),
		Status:      outbox.StatusPending,
		MaxRetries:  outbox.DefaultMaxRetries,
		ScheduledAt: time.Now().UTC(),
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO sync_tasks (id, operation, entity_type, entity_id, priority, status,
			retry_count, max_retries, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, string(task.Operation), string(task.EntityType), task.EntityID,
		int(task.Priority), string(task.Status), task.RetryCount, task.MaxRetries,
		task.ScheduledAt,
	)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not enqueue task", err)
	}

	return task, nil
}

// Dequeue returns up to batchSize pending tasks with retry budget left,
// ordered by priority then scheduled time.
func (r *QueueRepository) Dequeue(ctx context.Context, batchSize int) ([]*outbox.Task, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM sync_tasks
		WHERE status = ? AND retry_count < max_retries AND scheduled_at <= ?
		ORDER BY priority ASC, scheduled_at ASC
		LIMIT ?`,
		string(outbox.StatusPending), time.Now().UTC(), batchSize,
	)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not dequeue tasks", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Get returns one task by id.
func (r *QueueRepository) Get(ctx context.Context, id string) (*outbox.Task, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM sync_tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not load task", err)
	}
	return task, nil
}

// MarkProcessing transitions a pending task to processing.
func (r *QueueRepository) MarkProcessing(ctx context.Context, id string) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.Status.CanTransition(outbox.StatusProcessing) {
		return fmt.Errorf("%w: %s is %s", domainErrors.ErrTaskImmutable, id, task.Status)
	}

	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE sync_tasks SET status = ?, started_at = ? WHERE id = ?`,
		string(outbox.StatusProcessing), time.Now().UTC(), id)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not mark task processing", err)
	}
	return nil
}

// MarkCompleted finalizes a processing task with the remote linkage.
func (r *QueueRepository) MarkCompleted(ctx context.Context, id, remoteID, response string) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.Status.CanTransition(outbox.StatusCompleted) {
		return fmt.Errorf("%w: %s is %s", domainErrors.ErrTaskImmutable, id, task.Status)
	}

	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE sync_tasks
		SET status = ?, completed_at = ?, remote_id = ?, remote_response = ?, last_error = ''
		WHERE id = ?`,
		string(outbox.StatusCompleted), time.Now().UTC(), remoteID, response, id)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not mark task completed", err)
	}
	return nil
}

// MarkFailed transitions a processing task to failed and burns one retry.
func (r *QueueRepository) MarkFailed(ctx context.Context, id, lastError string) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.Status.CanTransition(outbox.StatusFailed) {
		return fmt.Errorf("%w: %s is %s", domainErrors.ErrTaskImmutable, id, task.Status)
	}

	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE sync_tasks
		SET status = ?, retry_count = retry_count + 1, last_error = ?
		WHERE id = ?`,
		string(outbox.StatusFailed), outbox.TruncateMessage(lastError), id)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not mark task failed", err)
	}
	return nil
}

// Requeue returns a failed task with budget left to pending, optionally
// delaying its visibility.
func (r *QueueRepository) Requeue(ctx context.Context, id string, delaySeconds int) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.Status.CanTransition(outbox.StatusPending) {
		return fmt.Errorf("%w: %s is %s", domainErrors.ErrTaskImmutable, id, task.Status)
	}
	if task.Exhausted() {
		return fmt.Errorf("%w: %s has no retries left", domainErrors.ErrTaskImmutable, id)
	}

	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	scheduledAt := time.Now().UTC().Add(time.Duration(delaySeconds) * time.Second)
	_, err = db.ExecContext(ctx, `
		UPDATE sync_tasks SET status = ?, scheduled_at = ? WHERE id = ?`,
		string(outbox.StatusPending), scheduledAt, id)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not requeue task", err)
	}
	return nil
}

// RequeueFailed requeues every failed task with budget left, applying
// the policy's backoff to its visibility time. Returns the count.
func (r *QueueRepository) RequeueFailed(ctx context.Context, policy outbox.RetryPolicy) (int, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM sync_tasks
		WHERE status = ? AND retry_count < max_retries`,
		string(outbox.StatusFailed))
	if err != nil {
		return 0, domainErrors.NewError(domainErrors.CodeStorage, "could not list failed tasks", err)
	}

	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, task := range tasks {
		delay := int(policy.Backoff(task.RetryCount).Seconds())
		if err := r.Requeue(ctx, task.ID, delay); err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}

// List returns tasks filtered by status (empty = all), newest first.
func (r *QueueRepository) List(ctx context.Context, status outbox.Status, limit int) ([]*outbox.Task, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM sync_tasks`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not list tasks", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// PendingCount returns the number of dequeuable tasks.
func (r *QueueRepository) PendingCount(ctx context.Context) (int, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sync_tasks
		WHERE status = ? AND retry_count < max_retries`,
		string(outbox.StatusPending)).Scan(&count)
	if err != nil {
		return 0, domainErrors.NewError(domainErrors.CodeStorage, "could not count pending tasks", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for task scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*outbox.Task, error) {
	var (
		task           outbox.Task
		operation      string
		entityType     string
		priority       int
		status         string
		startedAt      sql.NullTime
		completedAt    sql.NullTime
		remoteResponse sql.NullString
		remoteID       sql.NullString
		lastError      sql.NullString
	)

	err := s.Scan(
		&task.ID, &operation, &entityType, &task.EntityID, &priority, &status,
		&task.RetryCount, &task.MaxRetries, &task.ScheduledAt,
		&startedAt, &completedAt, &remoteResponse, &remoteID, &lastError,
	)
	if err != nil {
		return nil, err
	}

	task.Operation = outbox.Operation(operation)
	task.EntityType = program.EntityType(entityType)
	task.Priority = outbox.Priority(priority)
	task.Status = outbox.Status(status)
	if startedAt.Valid {
		t := startedAt.Time
		task.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	task.RemoteResponse = remoteResponse.String
	task.RemoteID = remoteID.String
	task.LastError = lastError.String

	return &task, nil
}

func scanTasks(rows *sql.Rows) ([]*outbox.Task, error) {
	var tasks []*outbox.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not iterate tasks", err)
	}
	return tasks, nil
}
