package clickup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
)

// deleteEndpoints maps a deletable object kind to its URL template.
// {id} is the remote id, {team} the configured workspace.
var deleteEndpoints = map[string]string{
	"space":      "/space/{id}",
	"folder":     "/folder/{id}",
	"list":       "/list/{id}",
	"task":       "/task/{id}",
	"checklist":  "/checklist/{id}",
	"goal":       "/goal/{id}",
	"key_result": "/key_result/{id}",
	"comment":    "/comment/{id}",
	"time_entry": "/team/{team}/time_entries/{id}",
}

func (c *Client) CreateSpace(ctx context.Context, p ports.SpacePayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/team/%s/space", url.PathEscape(c.workspaceID))
	return c.objectCall(ctx, http.MethodPost, path, spaceBody{
		Name:              p.Name,
		MultipleAssignees: p.MultipleAssignees,
	})
}

func (c *Client) UpdateSpace(ctx context.Context, remoteID string, p ports.SpacePayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/space/%s", url.PathEscape(remoteID))
	return c.objectCall(ctx, http.MethodPut, path, spaceBody{
		Name:              p.Name,
		MultipleAssignees: p.MultipleAssignees,
	})
}

func (c *Client) CreateFolder(ctx context.Context, p ports.FolderPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/space/%s/folder", url.PathEscape(p.SpaceID))
	return c.objectCall(ctx, http.MethodPost, path, folderBody{Name: p.Name})
}

func (c *Client) UpdateFolder(ctx context.Context, remoteID string, p ports.FolderPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/folder/%s", url.PathEscape(remoteID))
	return c.objectCall(ctx, http.MethodPut, path, folderBody{Name: p.Name})
}

func (c *Client) CreateList(ctx context.Context, p ports.ListPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/folder/%s/list", url.PathEscape(p.FolderID))
	return c.objectCall(ctx, http.MethodPost, path, listBody{Name: p.Name, Content: p.Content})
}

func (c *Client) UpdateList(ctx context.Context, remoteID string, p ports.ListPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/list/%s", url.PathEscape(remoteID))
	return c.objectCall(ctx, http.MethodPut, path, listBody{Name: p.Name, Content: p.Content})
}

func (c *Client) CreateTask(ctx context.Context, p ports.TaskPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/list/%s/task", url.PathEscape(p.ListID))
	return c.objectCall(ctx, http.MethodPost, path, taskBody{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    priorityNumber(p.Priority),
		StartDate:   epochMillis(p.StartDate),
		DueDate:     epochMillis(p.DueDate),
		NotifyAll:   p.NotifyAll,
	})
}

func (c *Client) UpdateTask(ctx context.Context, remoteID string, p ports.TaskPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/task/%s", url.PathEscape(remoteID))
	return c.objectCall(ctx, http.MethodPut, path, taskBody{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    priorityNumber(p.Priority),
		StartDate:   epochMillis(p.StartDate),
		DueDate:     epochMillis(p.DueDate),
		NotifyAll:   p.NotifyAll,
	})
}

// CreateSubtask is a task create with the parent field set; the remote
// API has no dedicated subtask endpoint.
func (c *Client) CreateSubtask(ctx context.Context, p ports.SubtaskPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/list/%s/task", url.PathEscape(p.ListID))
	return c.objectCall(ctx, http.MethodPost, path, taskBody{
		Name:      p.Name,
		Status:    p.Status,
		Priority:  priorityNumber(p.Priority),
		DueDate:   epochMillis(p.DueDate),
		NotifyAll: false,
		Parent:    p.ParentTaskID,
	})
}

func (c *Client) CreateChecklist(ctx context.Context, p ports.ChecklistPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/task/%s/checklist", url.PathEscape(p.TaskID))
	var env checklistEnvelope
	raw, err := c.do(ctx, http.MethodPost, path, checklistBody{Name: p.Name}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.Checklist.ID, URL: env.Checklist.URL, Raw: raw}, nil
}

func (c *Client) CreateChecklistItem(ctx context.Context, p ports.ChecklistItemPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/checklist/%s/checklist_item", url.PathEscape(p.ChecklistID))
	var env checklistItemEnvelope
	raw, err := c.do(ctx, http.MethodPost, path, checklistItemBody{Name: p.Name, Resolved: p.Resolved}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.Item.ID, URL: env.Item.URL, Raw: raw}, nil
}

func (c *Client) CreateGoal(ctx context.Context, p ports.GoalPayload) (*ports.RemoteObject, error) {
	workspaceID := p.WorkspaceID
	if workspaceID == "" {
		workspaceID = c.workspaceID
	}
	path := fmt.Sprintf("/team/%s/goal", url.PathEscape(workspaceID))
	var env goalEnvelope
	raw, err := c.do(ctx, http.MethodPost, path, goalBody{
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		DueDate:     epochMillis(p.DueDate),
	}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.Goal.ID, URL: env.Goal.URL, Raw: raw}, nil
}

func (c *Client) UpdateGoal(ctx context.Context, remoteID string, p ports.GoalPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/goal/%s", url.PathEscape(remoteID))
	var env goalEnvelope
	raw, err := c.do(ctx, http.MethodPut, path, goalBody{
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		DueDate:     epochMillis(p.DueDate),
	}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.Goal.ID, URL: env.Goal.URL, Raw: raw}, nil
}

func (c *Client) CreateKeyResult(ctx context.Context, p ports.KeyResultPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/goal/%s/key_result", url.PathEscape(p.GoalID))
	var env keyResultEnvelope
	raw, err := c.do(ctx, http.MethodPost, path, keyResultBody{
		Name:       p.Name,
		Unit:       p.Unit,
		StepsStart: p.StepsStart,
		StepsEnd:   p.StepsEnd,
		Type:       "number",
	}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.KeyResult.ID, URL: env.KeyResult.URL, Raw: raw}, nil
}

func (c *Client) CreateComment(ctx context.Context, p ports.CommentPayload) (*ports.RemoteObject, error) {
	path := fmt.Sprintf("/task/%s/comment", url.PathEscape(p.TaskID))
	return c.objectCall(ctx, http.MethodPost, path, commentBody{
		CommentText: p.Text,
		NotifyAll:   p.NotifyAll,
	})
}

func (c *Client) CreateTimeEntry(ctx context.Context, p ports.TimeEntryPayload) (*ports.RemoteObject, error) {
	workspaceID := p.WorkspaceID
	if workspaceID == "" {
		workspaceID = c.workspaceID
	}
	path := fmt.Sprintf("/team/%s/time_entries", url.PathEscape(workspaceID))
	var env timeEntryEnvelope
	raw, err := c.do(ctx, http.MethodPost, path, timeEntryBody{
		TaskID:      p.TaskID,
		Description: p.Description,
		Start:       p.Start.UnixMilli(),
		Duration:    p.Duration.Milliseconds(),
		Billable:    p.Billable,
	}, &env)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: env.Data.ID, URL: env.Data.URL, Raw: raw}, nil
}

// Delete removes a remote object by kind. An unknown kind is a
// programmer error, not a remote failure.
func (c *Client) Delete(ctx context.Context, kind, remoteID string) error {
	tmpl, ok := deleteEndpoints[kind]
	if !ok {
		return fmt.Errorf("%w: %q", domainErrors.ErrUnknownRemoteKind, kind)
	}

	path := strings.NewReplacer(
		"{id}", url.PathEscape(remoteID),
		"{team}", url.PathEscape(c.workspaceID),
	).Replace(tmpl)

	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// objectCall issues a create or update whose response body is the
// mutated object.
func (c *Client) objectCall(ctx context.Context, method, path string, body any) (*ports.RemoteObject, error) {
	var obj wireObject
	raw, err := c.do(ctx, method, path, body, &obj)
	if err != nil {
		return nil, err
	}
	return &ports.RemoteObject{ID: obj.ID, URL: obj.URL, Raw: raw}, nil
}
