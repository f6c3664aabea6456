package pull

import (
	"context"

	"github.com/fieldstack/progsync/internal/application/ports"
)

// Component-scoped agents. The scope's remote id is the remote list.

type CustomFieldAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *CustomFieldAgent) Name() string { return "custom_fields" }

func (a *CustomFieldAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListCustomFields(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertCustomField(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

type StatusAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *StatusAgent) Name() string { return "statuses" }

func (a *StatusAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListStatuses(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertStatus(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

type ViewAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *ViewAgent) Name() string { return "views" }

func (a *ViewAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListViews(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertView(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// Activity-scoped agents. The scope's remote id is the remote task.

// AttachmentAgent resolves each attachment's uploader into the local
// user directory first, so the attachment row can carry the FK.
type AttachmentAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *AttachmentAgent) Name() string { return "attachments" }

func (a *AttachmentAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListAttachments(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	upserted := 0
	for _, rec := range recs {
		var userLocalID int64
		if rec.User != nil {
			userLocalID, err = a.mirror.UpsertUser(ctx, *rec.User)
			if err != nil {
				return upserted, err
			}
		}
		if err := a.mirror.UpsertAttachment(ctx, scope.LocalID, userLocalID, rec); err != nil {
			return upserted, err
		}
		upserted++
	}
	return upserted, nil
}

// ChecklistAgent mirrors remote-side checklists and their items,
// including ones created directly in the remote UI that have no local
// checklist batch.
type ChecklistAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *ChecklistAgent) Name() string { return "checklists" }

func (a *ChecklistAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListChecklists(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	upserted := 0
	for _, rec := range recs {
		if err := a.mirror.UpsertChecklist(ctx, scope.LocalID, rec); err != nil {
			return upserted, err
		}
		upserted++
		for _, item := range rec.Items {
			if err := a.mirror.UpsertChecklistItem(ctx, rec.RemoteID, item); err != nil {
				return upserted, err
			}
			upserted++
		}
	}
	return upserted, nil
}

type TaskTagAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *TaskTagAgent) Name() string { return "task_tags" }

func (a *TaskTagAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListTaskTags(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertTaskTag(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

type FieldValueAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *FieldValueAgent) Name() string { return "field_values" }

func (a *FieldValueAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListFieldValues(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertFieldValue(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// Module-scoped agent. The scope's remote id is the remote space.

type SpaceTagAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *SpaceTagAgent) Name() string { return "space_tags" }

func (a *SpaceTagAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListSpaceTags(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	for i, rec := range recs {
		if err := a.mirror.UpsertTag(ctx, scope.LocalID, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// Workspace-scoped agent. The scope's remote id is the workspace.

// GoalAgent mirrors workspace goals and their nested key results.
type GoalAgent struct {
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
}

func (a *GoalAgent) Name() string { return "goals" }

func (a *GoalAgent) Pull(ctx context.Context, scope Scope) (int, error) {
	recs, err := a.collections.ListGoals(ctx, scope.RemoteID)
	if err != nil {
		return 0, err
	}
	upserted := 0
	for _, rec := range recs {
		if err := a.mirror.UpsertGoal(ctx, rec); err != nil {
			return upserted, err
		}
		upserted++
		for _, kr := range rec.KeyResults {
			if err := a.mirror.UpsertKeyResult(ctx, rec.RemoteID, kr); err != nil {
				return upserted, err
			}
			upserted++
		}
	}
	return upserted, nil
}
