package clickup

import (
	"encoding/json"
	"strconv"
	"time"
)

// Wire shapes. The remote API speaks epoch-millis dates and integer
// priorities; all coercion from domain values happens here so the rest
// of the system never sees the wire vocabulary.

// priorityNumbers is the remote integer scale for the local priority
// words. Unknown words fall back to normal.
var priorityNumbers = map[string]int{
	"urgent": 1,
	"high":   2,
	"normal": 3,
	"low":    4,
}

func priorityNumber(word string) int {
	if n, ok := priorityNumbers[word]; ok {
		return n
	}
	return priorityNumbers["normal"]
}

// epochMillis converts an optional date to the wire format.
func epochMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// Request bodies.

type spaceBody struct {
	Name              string `json:"name"`
	MultipleAssignees bool   `json:"multiple_assignees"`
}

type folderBody struct {
	Name string `json:"name"`
}

type listBody struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

type taskBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	StartDate   *int64 `json:"start_date,omitempty"`
	DueDate     *int64 `json:"due_date,omitempty"`
	NotifyAll   bool   `json:"notify_all"`
	Parent      string `json:"parent,omitempty"`
}

type checklistBody struct {
	Name string `json:"name"`
}

type checklistItemBody struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
}

type goalBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	DueDate     *int64 `json:"due_date,omitempty"`
}

type keyResultBody struct {
	Name       string `json:"name"`
	Unit       string `json:"unit,omitempty"`
	StepsStart int    `json:"steps_start"`
	StepsEnd   int    `json:"steps_end"`
	Type       string `json:"type"`
}

type commentBody struct {
	CommentText string `json:"comment_text"`
	NotifyAll   bool   `json:"notify_all"`
}

type timeEntryBody struct {
	TaskID      string `json:"tid"`
	Description string `json:"description,omitempty"`
	Start       int64  `json:"start"`
	Duration    int64  `json:"duration"`
	Billable    bool   `json:"billable"`
}

// Response shapes.

type wireObject struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type checklistEnvelope struct {
	Checklist wireObject `json:"checklist"`
}

type checklistItemEnvelope struct {
	Item wireObject `json:"item"`
}

type goalEnvelope struct {
	Goal wireObject `json:"goal"`
}

type keyResultEnvelope struct {
	KeyResult wireObject `json:"key_result"`
}

type timeEntryEnvelope struct {
	Data wireObject `json:"data"`
}

// Pull-side shapes.

type wireUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Color    string      `json:"color"`
	Initials string      `json:"initials"`
}

type wireCustomField struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	TypeConfig json.RawMessage `json:"type_config"`
	Required   bool            `json:"required"`
}

type wireStatus struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	Color      string `json:"color"`
	OrderIndex int    `json:"orderindex"`
}

type wireView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireAttachment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	User      *wireUser `json:"user"`
}

type wireChecklistItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrderIndex int    `json:"orderindex"`
	Resolved   bool   `json:"resolved"`
}

type wireChecklist struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	OrderIndex int                 `json:"orderindex"`
	Resolved   int                 `json:"resolved"`
	Items      []wireChecklistItem `json:"items"`
}

type wireTag struct {
	Name    string `json:"name"`
	TagFg   string `json:"tag_fg"`
	TagBg   string `json:"tag_bg"`
	Creator int64  `json:"creator"`
}

type wireKeyResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	StepsStart int    `json:"steps_start"`
	StepsEnd   int    `json:"steps_end"`
	Completed  int    `json:"completed"`
}

type wireGoal struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Color            string          `json:"color"`
	PercentCompleted float64         `json:"percent_completed"`
	KeyResults       []wireKeyResult `json:"key_results"`
}

type wireFieldValue struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// rawToString renders a custom-field value as a flat string: quoted
// strings are unquoted, everything else keeps its JSON text.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		if s, err := strconv.Unquote(string(raw)); err == nil {
			return s
		}
	}
	return string(raw)
}
