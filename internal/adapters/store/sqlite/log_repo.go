package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
)

// LogRepository implements ports.LogStore on the append-only sync_log
// table. Rows are never updated or deleted.
type LogRepository struct {
	conn *Connection
}

// NewLogRepository creates a new log repository.
func NewLogRepository(conn *Connection) *LogRepository {
	return &LogRepository{conn: conn}
}

// Append writes one audit row. The entry's ID and CreatedAt are filled
// in when unset.
func (r *LogRepository) Append(ctx context.Context, e *outbox.LogEntry) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Message = outbox.TruncateMessage(e.Message)

	_, err = db.ExecContext(ctx, `
		INSERT INTO sync_log (id, operation, entity_type, entity_id, direction, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Operation, e.EntityType, e.EntityID,
		string(e.Direction), string(e.Status), e.Message, e.CreatedAt)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not append sync log entry", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (r *LogRepository) Recent(ctx context.Context, limit int) ([]*outbox.LogEntry, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, operation, entity_type, entity_id, direction, status, message, created_at
		FROM sync_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not read sync log", err)
	}
	defer rows.Close()

	var entries []*outbox.LogEntry
	for rows.Next() {
		e := &outbox.LogEntry{}
		var direction, status string
		if err := rows.Scan(&e.ID, &e.Operation, &e.EntityType, &e.EntityID,
			&direction, &status, &e.Message, &e.CreatedAt); err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan sync log entry", err)
		}
		e.Direction = outbox.Direction(direction)
		e.Status = outbox.LogStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
