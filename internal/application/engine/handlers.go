package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// Handlers translate queue tasks into gateway calls: create resolves
// the parent's remote id first and stores the returned linkage, update
// requires the row's own remote id, delete goes through the generic
// kind-keyed endpoint. Handlers never touch the queue.

func unsupportedOperation(t program.EntityType, op outbox.Operation) error {
	return domainErrors.NewError(domainErrors.CodeMapping,
		fmt.Sprintf("operation %q is not supported for %s", op, t),
		domainErrors.ErrUnknownOperation)
}

// deleteRemote removes the remote counterpart of a tracked row. A row
// that never synced, or whose local record is already gone, leaves
// nothing to delete and succeeds.
func deleteRemote(ctx context.Context, store ports.EntityStore, gateway ports.RemoteGateway, t program.EntityType, task *outbox.Task) (*ports.HandlerResult, error) {
	kind, err := RemoteKind(t)
	if err != nil {
		return nil, err
	}

	remoteID := task.RemoteID
	if remoteID == "" {
		id, ok, err := store.RemoteID(ctx, t, task.EntityID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrEntityNotFound) {
				return &ports.HandlerResult{Response: "local row missing, nothing to delete"}, nil
			}
			return nil, err
		}
		if !ok {
			return &ports.HandlerResult{Response: "never synced, nothing to delete"}, nil
		}
		remoteID = id
	}

	if err := gateway.Delete(ctx, kind, remoteID); err != nil {
		return nil, err
	}
	return &ports.HandlerResult{Response: fmt.Sprintf("deleted %s %s", kind, remoteID)}, nil
}

// --- Module → remote space ---

type ModuleHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *ModuleHandler) EntityType() program.EntityType { return program.EntityModule }

func (h *ModuleHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		m, err := h.store.Module(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateSpace(ctx, ports.SpacePayload{Name: m.Name, MultipleAssignees: true})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityModule, m.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		m, err := h.store.Module(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntityModule, m.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.UpdateSpace(ctx, remoteID, ports.SpacePayload{Name: m.Name, MultipleAssignees: true})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityModule, m.ID, remoteID, m.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityModule, task)
	}
	return nil, unsupportedOperation(program.EntityModule, task.Operation)
}

// --- Sub-program → remote folder ---

type SubProgramHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *SubProgramHandler) EntityType() program.EntityType { return program.EntitySubProgram }

func (h *SubProgramHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		sp, err := h.store.SubProgram(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		spaceID, err := ResolveRemoteParent(ctx, h.store, program.EntitySubProgram, sp.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateFolder(ctx, ports.FolderPayload{SpaceID: spaceID, Name: sp.Name})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntitySubProgram, sp.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		sp, err := h.store.SubProgram(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntitySubProgram, sp.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.UpdateFolder(ctx, remoteID, ports.FolderPayload{Name: sp.Name})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntitySubProgram, sp.ID, remoteID, sp.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntitySubProgram, task)
	}
	return nil, unsupportedOperation(program.EntitySubProgram, task.Operation)
}

// --- Component → remote list ---

type ComponentHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *ComponentHandler) EntityType() program.EntityType { return program.EntityComponent }

func (h *ComponentHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		c, err := h.store.Component(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		folderID, err := ResolveRemoteParent(ctx, h.store, program.EntityComponent, c.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateList(ctx, ports.ListPayload{FolderID: folderID, Name: c.Name, Content: c.Description})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityComponent, c.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		c, err := h.store.Component(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntityComponent, c.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.UpdateList(ctx, remoteID, ports.ListPayload{Name: c.Name, Content: c.Description})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityComponent, c.ID, remoteID, c.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityComponent, task)
	}
	return nil, unsupportedOperation(program.EntityComponent, task.Operation)
}

// --- Activity → remote task ---

type ActivityHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *ActivityHandler) EntityType() program.EntityType { return program.EntityActivity }

func (h *ActivityHandler) payload(a *program.Activity, listID string) ports.TaskPayload {
	return ports.TaskPayload{
		ListID:      listID,
		Name:        a.Name,
		Description: a.Description,
		Status:      RemoteStatus(a.Approval, a.Progress),
		Priority:    string(a.Priority),
		StartDate:   a.StartDate,
		DueDate:     a.DueDate,
	}
}

func (h *ActivityHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		a, err := h.store.Activity(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		listID, err := ResolveRemoteParent(ctx, h.store, program.EntityActivity, a.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateTask(ctx, h.payload(a, listID))
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityActivity, a.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		a, err := h.store.Activity(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntityActivity, a.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.UpdateTask(ctx, remoteID, h.payload(a, ""))
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityActivity, a.ID, remoteID, a.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityActivity, task)
	}
	return nil, unsupportedOperation(program.EntityActivity, task.Operation)
}

// --- Sub-activity → remote subtask ---

type SubActivityHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *SubActivityHandler) EntityType() program.EntityType { return program.EntitySubActivity }

func (h *SubActivityHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		sa, err := h.store.SubActivity(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		// A subtask needs both the parent task and the list that task
		// lives in.
		parentTaskID, err := ResolveRemoteParent(ctx, h.store, program.EntitySubActivity, sa.ID)
		if err != nil {
			return nil, err
		}
		componentID, ok, err := h.store.ParentID(ctx, program.EntityActivity, sa.ActivityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: activity %d has no component", domainErrors.ErrEntityNotFound, sa.ActivityID)
		}
		listID, ok, err := h.store.RemoteID(ctx, program.EntityComponent, componentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: sub_activity %d awaits component %d",
				domainErrors.ErrDependencyNotSynced, sa.ID, componentID)
		}

		obj, err := h.gateway.CreateSubtask(ctx, ports.SubtaskPayload{
			ListID:       listID,
			ParentTaskID: parentTaskID,
			Name:         sa.Name,
			Status:       RemoteProgressStatus(sa.Progress),
			Priority:     string(sa.Priority),
			DueDate:      sa.DueDate,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntitySubActivity, sa.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		sa, err := h.store.SubActivity(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntitySubActivity, sa.ID)
		if err != nil {
			return nil, err
		}
		// A subtask is a task remotely; updates go through the task
		// endpoint.
		obj, err := h.gateway.UpdateTask(ctx, remoteID, ports.TaskPayload{
			Name:     sa.Name,
			Status:   RemoteProgressStatus(sa.Progress),
			Priority: string(sa.Priority),
			DueDate:  sa.DueDate,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntitySubActivity, sa.ID, remoteID, sa.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntitySubActivity, task)
	}
	return nil, unsupportedOperation(program.EntitySubActivity, task.Operation)
}

// --- Checklist batch → remote checklist + items ---

type ChecklistBatchHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *ChecklistBatchHandler) EntityType() program.EntityType { return program.EntityChecklistBatch }

// createItems pushes every unsynced item of the batch, marking each as
// it lands so a mid-batch failure resumes where it stopped.
func (h *ChecklistBatchHandler) createItems(ctx context.Context, checklistRemoteID string, items []program.ChecklistItem) (int, error) {
	created := 0
	for _, item := range items {
		if item.RemoteID != "" {
			continue
		}
		obj, err := h.gateway.CreateChecklistItem(ctx, ports.ChecklistItemPayload{
			ChecklistID: checklistRemoteID,
			Name:        item.Name,
			Resolved:    item.Done,
		})
		if err != nil {
			return created, err
		}
		if err := h.store.MarkItemSynced(ctx, item.ID, obj.ID); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (h *ChecklistBatchHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		b, err := h.store.ChecklistBatch(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		taskID, err := ResolveRemoteParent(ctx, h.store, program.EntityChecklistBatch, b.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateChecklist(ctx, ports.ChecklistPayload{TaskID: taskID, Name: b.Name})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityChecklistBatch, b.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		created, err := h.createItems(ctx, obj.ID, b.Items)
		if err != nil {
			return nil, err
		}
		return &ports.HandlerResult{
			RemoteID: obj.ID,
			Response: fmt.Sprintf("checklist %s with %d items", obj.ID, created),
		}, nil

	case outbox.OpUpdate:
		// The remote API has no checklist update; an update run pushes
		// any items added locally since the create.
		b, err := h.store.ChecklistBatch(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntityChecklistBatch, b.ID)
		if err != nil {
			return nil, err
		}
		created, err := h.createItems(ctx, remoteID, b.Items)
		if err != nil {
			return nil, err
		}
		return &ports.HandlerResult{
			RemoteID: remoteID,
			Response: fmt.Sprintf("appended %d items", created),
		}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityChecklistBatch, task)
	}
	return nil, unsupportedOperation(program.EntityChecklistBatch, task.Operation)
}

// --- Goal ---

type GoalHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *GoalHandler) EntityType() program.EntityType { return program.EntityGoal }

func (h *GoalHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		g, err := h.store.Goal(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateGoal(ctx, ports.GoalPayload{
			Name:        g.Name,
			Description: g.Description,
			Color:       g.Color,
			DueDate:     g.DueDate,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityGoal, g.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpUpdate:
		g, err := h.store.Goal(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		remoteID, err := resolveOwnRemoteID(ctx, h.store, program.EntityGoal, g.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.UpdateGoal(ctx, remoteID, ports.GoalPayload{
			Name:        g.Name,
			Description: g.Description,
			Color:       g.Color,
			DueDate:     g.DueDate,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityGoal, g.ID, remoteID, g.RemoteURL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: remoteID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityGoal, task)
	}
	return nil, unsupportedOperation(program.EntityGoal, task.Operation)
}

// --- Indicator → remote key result ---

type IndicatorHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *IndicatorHandler) EntityType() program.EntityType { return program.EntityIndicator }

func (h *IndicatorHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		ind, err := h.store.Indicator(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		goalID, err := ResolveRemoteParent(ctx, h.store, program.EntityIndicator, ind.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateKeyResult(ctx, ports.KeyResultPayload{
			GoalID:     goalID,
			Name:       ind.Name,
			Unit:       ind.Unit,
			StepsStart: ind.StepsStart,
			StepsEnd:   ind.StepsEnd,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityIndicator, ind.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityIndicator, task)
	}
	return nil, unsupportedOperation(program.EntityIndicator, task.Operation)
}

// --- Comment ---

type CommentHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *CommentHandler) EntityType() program.EntityType { return program.EntityComment }

func (h *CommentHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		c, err := h.store.Comment(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		taskID, err := ResolveRemoteParent(ctx, h.store, program.EntityComment, c.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateComment(ctx, ports.CommentPayload{TaskID: taskID, Text: c.Body})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityComment, c.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityComment, task)
	}
	return nil, unsupportedOperation(program.EntityComment, task.Operation)
}

// --- Time entry ---

type TimeEntryHandler struct {
	store   ports.EntityStore
	gateway ports.RemoteGateway
}

func (h *TimeEntryHandler) EntityType() program.EntityType { return program.EntityTimeEntry }

func (h *TimeEntryHandler) Handle(ctx context.Context, task *outbox.Task) (*ports.HandlerResult, error) {
	switch task.Operation {
	case outbox.OpCreate:
		te, err := h.store.TimeEntry(ctx, task.EntityID)
		if err != nil {
			return nil, err
		}
		taskID, err := ResolveRemoteParent(ctx, h.store, program.EntityTimeEntry, te.ID)
		if err != nil {
			return nil, err
		}
		obj, err := h.gateway.CreateTimeEntry(ctx, ports.TimeEntryPayload{
			TaskID:      taskID,
			Description: te.Description,
			Start:       te.Start,
			Duration:    te.Duration,
			Billable:    te.Billable,
		})
		if err != nil {
			return nil, err
		}
		if err := h.store.MarkSynced(ctx, program.EntityTimeEntry, te.ID, obj.ID, obj.URL); err != nil {
			return nil, err
		}
		return &ports.HandlerResult{RemoteID: obj.ID, Response: obj.Raw}, nil

	case outbox.OpDelete:
		return deleteRemote(ctx, h.store, h.gateway, program.EntityTimeEntry, task)
	}
	return nil, unsupportedOperation(program.EntityTimeEntry, task.Operation)
}
