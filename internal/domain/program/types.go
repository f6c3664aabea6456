package program

import "time"

// SyncStatus marks whether a local row has been mirrored remotely.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// SyncMeta is the tracked-entity shape shared by every hierarchy row.
// RemoteID is set exactly once, on the first successful create; it is
// the sole artifact tying a local row to its remote counterpart.
type SyncMeta struct {
	RemoteID     string
	RemoteURL    string
	SyncStatus   SyncStatus
	LastSyncedAt *time.Time
}

// Synced reports whether the row has a remote counterpart.
func (m SyncMeta) Synced() bool {
	return m.RemoteID != ""
}

// Module is the hierarchy root, mirrored as a remote space.
type Module struct {
	ID          int64
	Name        string
	Description string
	SyncMeta
}

// SubProgram sits under a module, mirrored as a remote folder.
type SubProgram struct {
	ID          int64
	ModuleID    int64
	Name        string
	Description string
	SyncMeta
}

// Component sits under a sub-program, mirrored as a remote list.
type Component struct {
	ID           int64
	SubProgramID int64
	Name         string
	Description  string
	SyncMeta
}

// Approval states an activity moves through locally.
type ApprovalState string

const (
	ApprovalDraft     ApprovalState = "draft"
	ApprovalSubmitted ApprovalState = "submitted"
	ApprovalApproved  ApprovalState = "approved"
	ApprovalRejected  ApprovalState = "rejected"
)

// Progress states an activity moves through locally.
type ProgressState string

const (
	ProgressPlanned   ProgressState = "planned"
	ProgressOngoing   ProgressState = "ongoing"
	ProgressCompleted ProgressState = "completed"
)

// PriorityWord is the four-level local priority vocabulary.
type PriorityWord string

const (
	PriorityUrgent PriorityWord = "urgent"
	PriorityHigh   PriorityWord = "high"
	PriorityNormal PriorityWord = "normal"
	PriorityLow    PriorityWord = "low"
)

// Activity is the unit of field work, mirrored as a remote task.
type Activity struct {
	ID          int64
	ComponentID int64
	Name        string
	Description string
	Approval    ApprovalState
	Progress    ProgressState
	Priority    PriorityWord
	StartDate   *time.Time
	DueDate     *time.Time
	SyncMeta
}

// SubActivity sits under an activity, mirrored as a remote subtask.
type SubActivity struct {
	ID         int64
	ActivityID int64
	Name       string
	Progress   ProgressState
	Priority   PriorityWord
	DueDate    *time.Time
	SyncMeta
}

// ChecklistBatch groups checklist items under one activity, mirrored as
// a remote checklist plus its items.
type ChecklistBatch struct {
	ID         int64
	ActivityID int64
	Name       string
	Items      []ChecklistItem
	SyncMeta
}

// ChecklistItem is one line of a checklist batch.
type ChecklistItem struct {
	ID       int64
	BatchID  int64
	Name     string
	Done     bool
	Position int
	RemoteID string
}

// Goal is a workspace-level objective, mirrored as a remote goal.
type Goal struct {
	ID          int64
	Name        string
	Description string
	Color       string
	DueDate     *time.Time
	SyncMeta
}

// Indicator measures progress toward a goal, mirrored as a remote key
// result.
type Indicator struct {
	ID         int64
	GoalID     int64
	Name       string
	Unit       string
	StepsStart int
	StepsEnd   int
	SyncMeta
}

// Comment is a note on an activity, mirrored as a remote task comment.
type Comment struct {
	ID         int64
	ActivityID int64
	Body       string
	Author     string
	SyncMeta
}

// TimeEntry records effort against an activity, mirrored as a remote
// time entry.
type TimeEntry struct {
	ID          int64
	ActivityID  int64
	Description string
	Start       time.Time
	Duration    time.Duration
	Billable    bool
	SyncMeta
}
