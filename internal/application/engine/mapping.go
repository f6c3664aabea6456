// Package engine drains the outbox queue: it dequeues pending sync
// tasks in priority order, dispatches each to its entity handler, and
// owns every queue state transition and audit log entry.
package engine

import (
	"fmt"

	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// remoteKinds maps each local entity kind to the remote object kind the
// gateway's generic delete understands.
var remoteKinds = map[program.EntityType]string{
	program.EntityModule:         "space",
	program.EntitySubProgram:     "folder",
	program.EntityComponent:      "list",
	program.EntityActivity:       "task",
	program.EntitySubActivity:    "task",
	program.EntityChecklistBatch: "checklist",
	program.EntityGoal:           "goal",
	program.EntityIndicator:      "key_result",
	program.EntityComment:        "comment",
	program.EntityTimeEntry:      "time_entry",
}

// RemoteKind returns the remote kind for an entity type. An unmapped
// type is a programmer error.
func RemoteKind(t program.EntityType) (string, error) {
	kind, ok := remoteKinds[t]
	if !ok {
		return "", domainErrors.NewError(domainErrors.CodeMapping,
			fmt.Sprintf("no remote kind for entity type %q", t),
			domainErrors.ErrUnknownEntityType)
	}
	return kind, nil
}

type statusKey struct {
	approval program.ApprovalState
	progress program.ProgressState
}

// activityStatuses is the exhaustive local-to-remote status table. The
// remote list carries {to do, under review, in progress, complete,
// rejected}; anything outside the table falls back to "to do".
var activityStatuses = map[statusKey]string{
	{program.ApprovalDraft, program.ProgressPlanned}:       "to do",
	{program.ApprovalDraft, program.ProgressOngoing}:       "to do",
	{program.ApprovalDraft, program.ProgressCompleted}:     "to do",
	{program.ApprovalSubmitted, program.ProgressPlanned}:   "under review",
	{program.ApprovalSubmitted, program.ProgressOngoing}:   "under review",
	{program.ApprovalSubmitted, program.ProgressCompleted}: "under review",
	{program.ApprovalApproved, program.ProgressPlanned}:    "to do",
	{program.ApprovalApproved, program.ProgressOngoing}:    "in progress",
	{program.ApprovalApproved, program.ProgressCompleted}:  "complete",
	{program.ApprovalRejected, program.ProgressPlanned}:    "rejected",
	{program.ApprovalRejected, program.ProgressOngoing}:    "rejected",
	{program.ApprovalRejected, program.ProgressCompleted}:  "rejected",
}

// fallbackStatus is the single documented default for unmapped state
// combinations.
const fallbackStatus = "to do"

// RemoteStatus maps the local (approval, progress) pair to the remote
// status word.
func RemoteStatus(approval program.ApprovalState, progress program.ProgressState) string {
	if status, ok := activityStatuses[statusKey{approval, progress}]; ok {
		return status
	}
	return fallbackStatus
}

// RemoteProgressStatus maps a standalone progress state (sub-activities
// have no approval workflow) to the remote status word.
func RemoteProgressStatus(progress program.ProgressState) string {
	return RemoteStatus(program.ApprovalApproved, progress)
}
