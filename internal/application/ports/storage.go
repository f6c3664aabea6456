package ports

import (
	"context"

	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// EntityStore loads hierarchy rows for push handlers and writes back
// the remote linkage after a successful create. The CRUD services that
// own these rows live outside the engine; the Create* helpers exist so
// collaborators (and tests) can seed rows through the same adapter.
type EntityStore interface {
	Module(ctx context.Context, id int64) (*program.Module, error)
	SubProgram(ctx context.Context, id int64) (*program.SubProgram, error)
	Component(ctx context.Context, id int64) (*program.Component, error)
	Activity(ctx context.Context, id int64) (*program.Activity, error)
	SubActivity(ctx context.Context, id int64) (*program.SubActivity, error)
	ChecklistBatch(ctx context.Context, id int64) (*program.ChecklistBatch, error)
	Goal(ctx context.Context, id int64) (*program.Goal, error)
	Indicator(ctx context.Context, id int64) (*program.Indicator, error)
	Comment(ctx context.Context, id int64) (*program.Comment, error)
	TimeEntry(ctx context.Context, id int64) (*program.TimeEntry, error)

	// RemoteID returns the remote id of any tracked row, with ok=false
	// when the row exists but has never synced.
	RemoteID(ctx context.Context, t program.EntityType, id int64) (remoteID string, ok bool, err error)

	// ParentID returns the local parent key of a tracked row. Roots
	// (module, goal) return ok=false.
	ParentID(ctx context.Context, t program.EntityType, id int64) (parentID int64, ok bool, err error)

	// MarkSynced stores the remote id (exactly once) and any secondary
	// artifact, and flips sync_status to synced.
	MarkSynced(ctx context.Context, t program.EntityType, id int64, remoteID, remoteURL string) error

	// MarkItemSynced stores the remote id on one checklist item.
	MarkItemSynced(ctx context.Context, itemID int64, remoteID string) error

	// SyncedComponents and SyncedActivities drive pull sweeps: every
	// row that has a remote counterpart to refresh from.
	SyncedModules(ctx context.Context) ([]*program.Module, error)
	SyncedComponents(ctx context.Context) ([]*program.Component, error)
	SyncedActivities(ctx context.Context) ([]*program.Activity, error)

	CreateModule(ctx context.Context, m *program.Module) error
	CreateSubProgram(ctx context.Context, sp *program.SubProgram) error
	CreateComponent(ctx context.Context, c *program.Component) error
	CreateActivity(ctx context.Context, a *program.Activity) error
	CreateSubActivity(ctx context.Context, sa *program.SubActivity) error
	CreateChecklistBatch(ctx context.Context, b *program.ChecklistBatch) error
	CreateGoal(ctx context.Context, g *program.Goal) error
	CreateIndicator(ctx context.Context, ind *program.Indicator) error
	CreateComment(ctx context.Context, c *program.Comment) error
	CreateTimeEntry(ctx context.Context, te *program.TimeEntry) error
}

// MirrorStore upserts remote-sourced rows into the local mirror tables.
// The upsert key is always the remote object's immutable id (or natural
// key); remote-owned fields are refreshed, local-only columns are never
// touched, and nothing is ever deleted by the pull path.
type MirrorStore interface {
	// UpsertUser resolves a remote user into the local directory and
	// returns the surrogate key for FK use.
	UpsertUser(ctx context.Context, u UserRecord) (int64, error)

	UpsertCustomField(ctx context.Context, componentID int64, rec CustomFieldRecord) error
	UpsertStatus(ctx context.Context, componentID int64, rec StatusRecord) error
	UpsertView(ctx context.Context, componentID int64, rec ViewRecord) error
	UpsertAttachment(ctx context.Context, activityID int64, userLocalID int64, rec AttachmentRecord) error
	UpsertChecklist(ctx context.Context, activityID int64, rec ChecklistRecord) error
	UpsertChecklistItem(ctx context.Context, checklistRemoteID string, rec ChecklistItemRecord) error
	UpsertTag(ctx context.Context, moduleID int64, rec TagRecord) error
	UpsertTaskTag(ctx context.Context, activityID int64, rec TaskTagRecord) error
	UpsertGoal(ctx context.Context, rec GoalRecord) error
	UpsertKeyResult(ctx context.Context, goalRemoteID string, rec KeyResultRecord) error
	UpsertFieldValue(ctx context.Context, activityID int64, rec FieldValueRecord) error

	// Count returns the row count of one mirror table, for inspection
	// and idempotence tests.
	Count(ctx context.Context, table string) (int, error)
}

// LogStore appends to and reads the immutable sync audit log.
type LogStore interface {
	Append(ctx context.Context, e *outbox.LogEntry) error
	Recent(ctx context.Context, limit int) ([]*outbox.LogEntry, error)
}
