package sqlite

import (
	"context"
	"fmt"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
)

// MirrorRepository implements ports.MirrorStore on the remote_* tables.
// Every write is an upsert keyed by the remote object's immutable id (or
// natural key); a second pull of the same data refreshes rows in place.
type MirrorRepository struct {
	conn *Connection
}

// NewMirrorRepository creates a new mirror repository.
func NewMirrorRepository(conn *Connection) *MirrorRepository {
	return &MirrorRepository{conn: conn}
}

// countableTables is the allowlist for Count; table names never come
// from user input but the check keeps the string interpolation safe.
var countableTables = map[string]bool{
	"remote_users":           true,
	"remote_custom_fields":   true,
	"remote_statuses":        true,
	"remote_views":           true,
	"remote_attachments":     true,
	"remote_checklists":      true,
	"remote_checklist_items": true,
	"remote_tags":            true,
	"remote_task_tags":       true,
	"remote_field_values":    true,
	"remote_goals":           true,
	"remote_key_results":     true,
}

// UpsertUser resolves a remote user into the local directory and
// returns the surrogate key for FK use.
func (r *MirrorRepository) UpsertUser(ctx context.Context, u ports.UserRecord) (int64, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_users (remote_id, username, email, color, initials)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			color = excluded.color,
			initials = excluded.initials,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		u.RemoteID, u.Username, u.Email, u.Color, u.Initials)
	if err != nil {
		return 0, domainErrors.NewError(domainErrors.CodeStorage, "could not upsert remote user", err)
	}

	var localID int64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM remote_users WHERE remote_id = ?`, u.RemoteID).Scan(&localID)
	if err != nil {
		return 0, domainErrors.NewError(domainErrors.CodeStorage, "could not resolve remote user id", err)
	}
	return localID, nil
}

func (r *MirrorRepository) UpsertCustomField(ctx context.Context, componentID int64, rec ports.CustomFieldRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_custom_fields (remote_id, component_id, name, field_type, type_config, required)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			component_id = excluded.component_id,
			name = excluded.name,
			field_type = excluded.field_type,
			type_config = excluded.type_config,
			required = excluded.required,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, componentID, rec.Name, rec.Type, rec.TypeConfig, rec.Required)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert custom field", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertStatus(ctx context.Context, componentID int64, rec ports.StatusRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_statuses (remote_id, component_id, status, status_type, color, order_index)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			component_id = excluded.component_id,
			status = excluded.status,
			status_type = excluded.status_type,
			color = excluded.color,
			order_index = excluded.order_index,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, componentID, rec.Status, rec.Type, rec.Color, rec.OrderIndex)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert status", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertView(ctx context.Context, componentID int64, rec ports.ViewRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_views (remote_id, component_id, name, view_type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			component_id = excluded.component_id,
			name = excluded.name,
			view_type = excluded.view_type,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, componentID, rec.Name, rec.Type)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert view", err)
	}
	return nil
}

// UpsertAttachment stores one attachment row. userLocalID of zero means
// the uploader is unknown and the FK is left NULL.
func (r *MirrorRepository) UpsertAttachment(ctx context.Context, activityID int64, userLocalID int64, rec ports.AttachmentRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	var userID any
	if userLocalID > 0 {
		userID = userLocalID
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_attachments (remote_id, activity_id, user_id, title, url, extension, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			activity_id = excluded.activity_id,
			user_id = excluded.user_id,
			title = excluded.title,
			url = excluded.url,
			extension = excluded.extension,
			size = excluded.size,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, activityID, userID, rec.Title, rec.URL, rec.Extension, rec.Size)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert attachment", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertChecklist(ctx context.Context, activityID int64, rec ports.ChecklistRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_checklists (remote_id, activity_id, name, order_index, resolved)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			activity_id = excluded.activity_id,
			name = excluded.name,
			order_index = excluded.order_index,
			resolved = excluded.resolved,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, activityID, rec.Name, rec.OrderIndex, rec.Resolved)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert checklist", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertChecklistItem(ctx context.Context, checklistRemoteID string, rec ports.ChecklistItemRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_checklist_items (remote_id, checklist_remote_id, name, order_index, resolved)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			checklist_remote_id = excluded.checklist_remote_id,
			name = excluded.name,
			order_index = excluded.order_index,
			resolved = excluded.resolved,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, checklistRemoteID, rec.Name, rec.OrderIndex, rec.Resolved)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert checklist item", err)
	}
	return nil
}

// UpsertTag stores one space tag; the remote system keys tags by name,
// so the natural key is (module_id, name).
func (r *MirrorRepository) UpsertTag(ctx context.Context, moduleID int64, rec ports.TagRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_tags (name, module_id, fg_color, bg_color)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(module_id, name) DO UPDATE SET
			fg_color = excluded.fg_color,
			bg_color = excluded.bg_color,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.Name, moduleID, rec.FgColor, rec.BgColor)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert tag", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertTaskTag(ctx context.Context, activityID int64, rec ports.TaskTagRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_task_tags (activity_id, tag_name)
		VALUES (?, ?)
		ON CONFLICT(activity_id, tag_name) DO UPDATE SET
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		activityID, rec.TagName)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert task tag", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertGoal(ctx context.Context, rec ports.GoalRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_goals (remote_id, name, description, color, percent_completed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			color = excluded.color,
			percent_completed = excluded.percent_completed,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, rec.Name, rec.Description, rec.Color, rec.PercentCompleted)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert goal", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertKeyResult(ctx context.Context, goalRemoteID string, rec ports.KeyResultRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_key_results (remote_id, goal_remote_id, name, unit, steps_start, steps_end, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			goal_remote_id = excluded.goal_remote_id,
			name = excluded.name,
			unit = excluded.unit,
			steps_start = excluded.steps_start,
			steps_end = excluded.steps_end,
			completed = excluded.completed,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.RemoteID, goalRemoteID, rec.Name, rec.Unit, rec.StepsStart, rec.StepsEnd, rec.Completed)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert key result", err)
	}
	return nil
}

func (r *MirrorRepository) UpsertFieldValue(ctx context.Context, activityID int64, rec ports.FieldValueRecord) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO remote_field_values (field_remote_id, activity_id, value)
		VALUES (?, ?, ?)
		ON CONFLICT(field_remote_id, activity_id) DO UPDATE SET
			value = excluded.value,
			sync_status = 'synced',
			last_sync_at = CURRENT_TIMESTAMP`,
		rec.FieldRemoteID, activityID, rec.Value)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not upsert field value", err)
	}
	return nil
}

// Count returns the row count of one mirror table.
func (r *MirrorRepository) Count(ctx context.Context, table string) (int, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, err
	}

	if !countableTables[table] {
		return 0, domainErrors.NewError(domainErrors.CodeStorage,
			fmt.Sprintf("unknown mirror table %q", table), nil)
	}

	var count int
	err = db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, domainErrors.NewError(domainErrors.CodeStorage, "could not count mirror rows", err)
	}
	return count, nil
}
