package ports

import (
	"context"
	"time"
)

// RemoteObject is what the remote system returns for a created or
// updated object: its id plus any secondary artifact worth keeping.
type RemoteObject struct {
	ID  string
	URL string
	// Raw is the response body as received, retained for audit.
	Raw string
}

// Payloads carry domain-level values; the gateway owns coercion to the
// remote wire format (epoch millis, integer priorities).

type SpacePayload struct {
	Name              string
	MultipleAssignees bool
}

type FolderPayload struct {
	SpaceID string
	Name    string
}

type ListPayload struct {
	FolderID string
	Name     string
	Content  string
}

type TaskPayload struct {
	ListID      string
	Name        string
	Description string
	Status      string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
	NotifyAll   bool
}

type SubtaskPayload struct {
	ListID       string
	ParentTaskID string
	Name         string
	Status       string
	Priority     string
	DueDate      *time.Time
}

type ChecklistPayload struct {
	TaskID string
	Name   string
}

type ChecklistItemPayload struct {
	ChecklistID string
	Name        string
	Resolved    bool
}

type GoalPayload struct {
	WorkspaceID string
	Name        string
	Description string
	Color       string
	DueDate     *time.Time
}

type KeyResultPayload struct {
	GoalID     string
	Name       string
	Unit       string
	StepsStart int
	StepsEnd   int
}

type CommentPayload struct {
	TaskID    string
	Text      string
	NotifyAll bool
}

type TimeEntryPayload struct {
	WorkspaceID string
	TaskID      string
	Description string
	Start       time.Time
	Duration    time.Duration
	Billable    bool
}

// RemoteGateway is the push side of the remote API client. It performs
// no retries; one failed call propagates to the caller, which owns all
// retry bookkeeping.
type RemoteGateway interface {
	CreateSpace(ctx context.Context, p SpacePayload) (*RemoteObject, error)
	UpdateSpace(ctx context.Context, remoteID string, p SpacePayload) (*RemoteObject, error)

	CreateFolder(ctx context.Context, p FolderPayload) (*RemoteObject, error)
	UpdateFolder(ctx context.Context, remoteID string, p FolderPayload) (*RemoteObject, error)

	CreateList(ctx context.Context, p ListPayload) (*RemoteObject, error)
	UpdateList(ctx context.Context, remoteID string, p ListPayload) (*RemoteObject, error)

	CreateTask(ctx context.Context, p TaskPayload) (*RemoteObject, error)
	UpdateTask(ctx context.Context, remoteID string, p TaskPayload) (*RemoteObject, error)

	CreateSubtask(ctx context.Context, p SubtaskPayload) (*RemoteObject, error)

	CreateChecklist(ctx context.Context, p ChecklistPayload) (*RemoteObject, error)
	CreateChecklistItem(ctx context.Context, p ChecklistItemPayload) (*RemoteObject, error)

	CreateGoal(ctx context.Context, p GoalPayload) (*RemoteObject, error)
	UpdateGoal(ctx context.Context, remoteID string, p GoalPayload) (*RemoteObject, error)
	CreateKeyResult(ctx context.Context, p KeyResultPayload) (*RemoteObject, error)

	CreateComment(ctx context.Context, p CommentPayload) (*RemoteObject, error)
	CreateTimeEntry(ctx context.Context, p TimeEntryPayload) (*RemoteObject, error)

	// Delete removes a remote object by kind name (space, folder, list,
	// task, checklist, goal, key_result, comment, time_entry). An
	// unrecognized kind is a programmer error and raises a mapping error.
	Delete(ctx context.Context, kind, remoteID string) error
}

// Records returned by the pull side. Every optionally-absent remote
// field is coerced to an explicit default by the gateway before these
// are handed to an agent.

type UserRecord struct {
	RemoteID string
	Username string
	Email    string
	Color    string
	Initials string
}

type CustomFieldRecord struct {
	RemoteID   string
	Name       string
	Type       string
	TypeConfig string
	Required   bool
}

type AttachmentRecord struct {
	RemoteID  string
	Title     string
	URL       string
	Extension string
	Size      int64
	User      *UserRecord
}

type ChecklistItemRecord struct {
	RemoteID   string
	Name       string
	OrderIndex int
	Resolved   bool
}

type ChecklistRecord struct {
	RemoteID   string
	Name       string
	OrderIndex int
	Resolved   int
	Items      []ChecklistItemRecord
}

type KeyResultRecord struct {
	RemoteID   string
	Name       string
	Unit       string
	StepsStart int
	StepsEnd   int
	Completed  int
}

type GoalRecord struct {
	RemoteID         string
	Name             string
	Description      string
	Color            string
	PercentCompleted float64
	KeyResults       []KeyResultRecord
}

type StatusRecord struct {
	RemoteID   string
	Status     string
	Type       string
	Color      string
	OrderIndex int
}

// TagRecord has no remote id; the remote system keys tags by name.
type TagRecord struct {
	Name    string
	FgColor string
	BgColor string
}

type TaskTagRecord struct {
	TaskRemoteID string
	TagName      string
}

type ViewRecord struct {
	RemoteID string
	Name     string
	Type     string
}

type FieldValueRecord struct {
	FieldRemoteID string
	TaskRemoteID  string
	Value         string
}

// RemoteCollections is the pull side of the remote API client: one
// fetcher per mirrored sub-collection, each scoped to a parent. A 404
// surfaces as ErrCollectionMissing so agents can treat it as empty.
type RemoteCollections interface {
	ListCustomFields(ctx context.Context, listID string) ([]CustomFieldRecord, error)
	ListStatuses(ctx context.Context, listID string) ([]StatusRecord, error)
	ListViews(ctx context.Context, listID string) ([]ViewRecord, error)
	ListAttachments(ctx context.Context, taskID string) ([]AttachmentRecord, error)
	ListChecklists(ctx context.Context, taskID string) ([]ChecklistRecord, error)
	ListTaskTags(ctx context.Context, taskID string) ([]TaskTagRecord, error)
	ListFieldValues(ctx context.Context, taskID string) ([]FieldValueRecord, error)
	ListSpaceTags(ctx context.Context, spaceID string) ([]TagRecord, error)
	ListGoals(ctx context.Context, workspaceID string) ([]GoalRecord, error)
}
