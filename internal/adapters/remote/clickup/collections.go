package clickup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fieldstack/progsync/internal/application/ports"
)

// Pull-side fetchers. Each makes one GET and coerces the wire shapes
// into the explicit-default records the agents expect. A 404 bubbles up
// as ErrCollectionMissing; the caller decides whether that means empty.

func (c *Client) ListCustomFields(ctx context.Context, listID string) ([]ports.CustomFieldRecord, error) {
	path := fmt.Sprintf("/list/%s/field", url.PathEscape(listID))
	var resp struct {
		Fields []wireCustomField `json:"fields"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.CustomFieldRecord, 0, len(resp.Fields))
	for _, f := range resp.Fields {
		records = append(records, ports.CustomFieldRecord{
			RemoteID:   f.ID,
			Name:       f.Name,
			Type:       f.Type,
			TypeConfig: string(f.TypeConfig),
			Required:   f.Required,
		})
	}
	return records, nil
}

func (c *Client) ListStatuses(ctx context.Context, listID string) ([]ports.StatusRecord, error) {
	path := fmt.Sprintf("/list/%s", url.PathEscape(listID))
	var resp struct {
		Statuses []wireStatus `json:"statuses"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.StatusRecord, 0, len(resp.Statuses))
	for _, s := range resp.Statuses {
		records = append(records, ports.StatusRecord{
			RemoteID:   s.ID,
			Status:     s.Status,
			Type:       s.Type,
			Color:      s.Color,
			OrderIndex: s.OrderIndex,
		})
	}
	return records, nil
}

func (c *Client) ListViews(ctx context.Context, listID string) ([]ports.ViewRecord, error) {
	path := fmt.Sprintf("/list/%s/view", url.PathEscape(listID))
	var resp struct {
		Views []wireView `json:"views"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.ViewRecord, 0, len(resp.Views))
	for _, v := range resp.Views {
		records = append(records, ports.ViewRecord{
			RemoteID: v.ID,
			Name:     v.Name,
			Type:     v.Type,
		})
	}
	return records, nil
}

func (c *Client) ListAttachments(ctx context.Context, taskID string) ([]ports.AttachmentRecord, error) {
	path := fmt.Sprintf("/task/%s/attachment", url.PathEscape(taskID))
	var resp struct {
		Attachments []wireAttachment `json:"attachments"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.AttachmentRecord, 0, len(resp.Attachments))
	for _, a := range resp.Attachments {
		rec := ports.AttachmentRecord{
			RemoteID:  a.ID,
			Title:     a.Title,
			URL:       a.URL,
			Extension: a.Extension,
			Size:      a.Size,
		}
		if a.User != nil {
			rec.User = &ports.UserRecord{
				RemoteID: a.User.ID.String(),
				Username: a.User.Username,
				Email:    a.User.Email,
				Color:    a.User.Color,
				Initials: a.User.Initials,
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) ListChecklists(ctx context.Context, taskID string) ([]ports.ChecklistRecord, error) {
	path := fmt.Sprintf("/task/%s", url.PathEscape(taskID))
	var resp struct {
		Checklists []wireChecklist `json:"checklists"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.ChecklistRecord, 0, len(resp.Checklists))
	for _, cl := range resp.Checklists {
		rec := ports.ChecklistRecord{
			RemoteID:   cl.ID,
			Name:       cl.Name,
			OrderIndex: cl.OrderIndex,
			Resolved:   cl.Resolved,
		}
		for _, item := range cl.Items {
			rec.Items = append(rec.Items, ports.ChecklistItemRecord{
				RemoteID:   item.ID,
				Name:       item.Name,
				OrderIndex: item.OrderIndex,
				Resolved:   item.Resolved,
			})
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) ListTaskTags(ctx context.Context, taskID string) ([]ports.TaskTagRecord, error) {
	path := fmt.Sprintf("/task/%s", url.PathEscape(taskID))
	var resp struct {
		Tags []wireTag `json:"tags"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.TaskTagRecord, 0, len(resp.Tags))
	for _, tag := range resp.Tags {
		records = append(records, ports.TaskTagRecord{
			TaskRemoteID: taskID,
			TagName:      tag.Name,
		})
	}
	return records, nil
}

func (c *Client) ListFieldValues(ctx context.Context, taskID string) ([]ports.FieldValueRecord, error) {
	path := fmt.Sprintf("/task/%s", url.PathEscape(taskID))
	var resp struct {
		CustomFields []wireFieldValue `json:"custom_fields"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.FieldValueRecord, 0, len(resp.CustomFields))
	for _, fv := range resp.CustomFields {
		records = append(records, ports.FieldValueRecord{
			FieldRemoteID: fv.ID,
			TaskRemoteID:  taskID,
			Value:         rawToString(fv.Value),
		})
	}
	return records, nil
}

func (c *Client) ListSpaceTags(ctx context.Context, spaceID string) ([]ports.TagRecord, error) {
	path := fmt.Sprintf("/space/%s/tag", url.PathEscape(spaceID))
	var resp struct {
		Tags []wireTag `json:"tags"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.TagRecord, 0, len(resp.Tags))
	for _, tag := range resp.Tags {
		records = append(records, ports.TagRecord{
			Name:    tag.Name,
			FgColor: tag.TagFg,
			BgColor: tag.TagBg,
		})
	}
	return records, nil
}

func (c *Client) ListGoals(ctx context.Context, workspaceID string) ([]ports.GoalRecord, error) {
	path := fmt.Sprintf("/team/%s/goal", url.PathEscape(workspaceID))
	var resp struct {
		Goals []wireGoal `json:"goals"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ports.GoalRecord, 0, len(resp.Goals))
	for _, g := range resp.Goals {
		rec := ports.GoalRecord{
			RemoteID:         g.ID,
			Name:             g.Name,
			Description:      g.Description,
			Color:            g.Color,
			PercentCompleted: g.PercentCompleted,
		}
		for _, kr := range g.KeyResults {
			rec.KeyResults = append(rec.KeyResults, ports.KeyResultRecord{
				RemoteID:   kr.ID,
				Name:       kr.Name,
				Unit:       kr.Unit,
				StepsStart: kr.StepsStart,
				StepsEnd:   kr.StepsEnd,
				Completed:  kr.Completed,
			})
		}
		records = append(records, rec)
	}
	return records, nil
}
