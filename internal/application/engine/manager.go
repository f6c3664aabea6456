package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/infrastructure/logging"
	"github.com/fieldstack/progsync/internal/infrastructure/tracing"
)

// DefaultBatchSize caps how many tasks one drain processes.
const DefaultBatchSize = 25

// DrainResult summarizes one drain run.
type DrainResult struct {
	DrainID   string
	Processed int
	Completed int
	Failed    int
	Requeued  int
	Duration  time.Duration
}

// Manager owns the drain loop: single-flight, sequential, and the only
// writer of queue state transitions and audit log rows.
type Manager struct {
	queue     ports.Queue
	registry  *Registry
	logStore  ports.LogStore
	logger    *logging.Logger
	tracer    *tracing.Tracer
	policy    outbox.RetryPolicy
	batchSize int

	draining atomic.Bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBatchSize sets how many tasks one drain dequeues.
func WithBatchSize(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithRetryPolicy sets what happens to failed tasks with budget left.
func WithRetryPolicy(p outbox.RetryPolicy) ManagerOption {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTracer sets the tracer used for drain and task spans.
func WithTracer(tracer *tracing.Tracer) ManagerOption {
	return func(m *Manager) {
		m.tracer = tracer
	}
}

// NewManager creates a drain manager.
func NewManager(queue ports.Queue, registry *Registry, logStore ports.LogStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		queue:     queue,
		registry:  registry,
		logStore:  logStore,
		logger:    logging.Default(),
		tracer:    tracing.Default(),
		policy:    outbox.DefaultRetryPolicy(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Drain processes one batch of pending tasks. Exactly one drain runs at
// a time; a second concurrent call returns ErrDrainInProgress without
// touching the queue.
func (m *Manager) Drain(ctx context.Context) (*DrainResult, error) {
	if !m.draining.CompareAndSwap(false, true) {
		return nil, domainErrors.ErrDrainInProgress
	}
	defer m.draining.Store(false)

	start := time.Now()
	result := &DrainResult{DrainID: uuid.NewString()}
	ctx = logging.WithDrainID(ctx, result.DrainID)

	ctx, span := m.tracer.StartDrainSpan(ctx, result.DrainID, m.batchSize)
	defer span.End()

	logging.LogDrainStart(ctx, m.logger, result.DrainID, m.batchSize)

	// Under a requeue policy, failed tasks with budget left rejoin the
	// queue (with backoff) before the batch is picked.
	if m.policy.Mode == outbox.RetryRequeue {
		requeued, err := m.queue.RequeueFailed(ctx, m.policy)
		if err != nil {
			span.EndWithError(err)
			return nil, err
		}
		result.Requeued = requeued
	}

	tasks, err := m.queue.Dequeue(ctx, m.batchSize)
	if err != nil {
		span.EndWithError(err)
		return nil, err
	}
	span.SetTaskCount(len(tasks))

	for _, task := range tasks {
		result.Processed++
		if m.processTask(ctx, task) {
			result.Completed++
		} else {
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	span.SetResults(result.Completed, result.Failed)
	logging.LogDrainComplete(ctx, m.logger, result.DrainID,
		result.Processed, result.Completed, result.Failed, result.Duration)
	return result, nil
}

// processTask runs one task through its handler and records the outcome
// on the queue row and in the audit log. Returns true on success.
func (m *Manager) processTask(ctx context.Context, task *outbox.Task) bool {
	taskCtx := logging.WithTaskID(ctx, task.ID)
	taskCtx = logging.WithEntity(taskCtx, string(task.EntityType), task.EntityID)

	taskCtx, span := m.tracer.StartTaskSpan(taskCtx, task.ID, string(task.EntityType), string(task.Operation))
	span.SetEntityID(task.EntityID)
	span.SetRetryCount(task.RetryCount)

	start := time.Now()
	if err := m.queue.MarkProcessing(taskCtx, task.ID); err != nil {
		m.recordFailure(taskCtx, task, err)
		span.EndWithError(err)
		return false
	}

	handler, err := m.registry.Get(task.EntityType)
	if err != nil {
		m.failTask(taskCtx, task, err)
		span.EndWithError(err)
		return false
	}

	result, err := handler.Handle(taskCtx, task)
	if err != nil {
		m.failTask(taskCtx, task, err)
		span.EndWithError(err)
		return false
	}

	if err := m.queue.MarkCompleted(taskCtx, task.ID, result.RemoteID, result.Response); err != nil {
		m.recordFailure(taskCtx, task, err)
		span.EndWithError(err)
		return false
	}

	m.appendLog(taskCtx, task, outbox.LogSuccess, result.Response)
	logging.LogTaskCompleted(taskCtx, m.logger, task.ID, result.RemoteID, time.Since(start))
	span.SetRemoteID(result.RemoteID)
	span.End()
	return true
}

// failTask marks the queue row failed and writes the audit entry.
func (m *Manager) failTask(ctx context.Context, task *outbox.Task, cause error) {
	if err := m.queue.MarkFailed(ctx, task.ID, cause.Error()); err != nil {
		m.logger.ErrorContext(ctx, "could not mark task failed", "task_id", task.ID, "error", err)
	}
	m.recordFailure(ctx, task, cause)
}

// recordFailure writes the audit entry and log line for a failed
// attempt without touching queue state.
func (m *Manager) recordFailure(ctx context.Context, task *outbox.Task, cause error) {
	m.appendLog(ctx, task, outbox.LogFailed, cause.Error())
	logging.LogTaskFailed(ctx, m.logger, task.ID, task.RetryCount+1, cause)
}

func (m *Manager) appendLog(ctx context.Context, task *outbox.Task, status outbox.LogStatus, message string) {
	entry := &outbox.LogEntry{
		Operation:  string(task.Operation),
		EntityType: string(task.EntityType),
		EntityID:   task.EntityID,
		Direction:  outbox.DirectionPush,
		Status:     status,
		Message:    message,
	}
	if err := m.logStore.Append(ctx, entry); err != nil {
		m.logger.ErrorContext(ctx, "could not append sync log entry", "task_id", task.ID, "error", err)
	}
}
