package clickup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
)

// newTestClient points a client at a test server with the rate limiter
// neutralized (zero sleep, fixed clock).
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewClient(Config{
		BaseURL:     server.URL,
		APIToken:    "pk_test_token",
		WorkspaceID: "ws_1",
		MinInterval: time.Millisecond,
	}, WithClock(func() time.Time { return now }, func(time.Duration) {}))
}

func TestClient_Throttle(t *testing.T) {
	t.Run("second call waits out the interval", func(t *testing.T) {
		var sleeps []time.Duration
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"x"}`))
		}))
		defer server.Close()

		c := NewClient(Config{
			BaseURL:     server.URL,
			APIToken:    "tok",
			WorkspaceID: "ws_1",
			MinInterval: time.Second,
		}, WithClock(
			func() time.Time { return now },
			func(d time.Duration) { sleeps = append(sleeps, d) },
		))

		ctx := context.Background()
		if _, err := c.CreateSpace(ctx, ports.SpacePayload{Name: "a"}); err != nil {
			t.Fatalf("first call error = %v", err)
		}
		if len(sleeps) != 0 {
			t.Errorf("first call slept %v, want no sleep", sleeps)
		}

		if _, err := c.CreateSpace(ctx, ports.SpacePayload{Name: "b"}); err != nil {
			t.Fatalf("second call error = %v", err)
		}
		if len(sleeps) != 1 || sleeps[0] != time.Second {
			t.Errorf("second call sleeps = %v, want [1s]", sleeps)
		}
	})

	t.Run("no wait when interval already elapsed", func(t *testing.T) {
		var sleeps []time.Duration
		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"x"}`))
		}))
		defer server.Close()

		c := NewClient(Config{
			BaseURL:     server.URL,
			APIToken:    "tok",
			WorkspaceID: "ws_1",
			MinInterval: time.Second,
		}, WithClock(
			func() time.Time { n := now; now = now.Add(2 * time.Second); return n },
			func(d time.Duration) { sleeps = append(sleeps, d) },
		))

		ctx := context.Background()
		c.CreateSpace(ctx, ports.SpacePayload{Name: "a"})
		c.CreateSpace(ctx, ports.SpacePayload{Name: "b"})

		if len(sleeps) != 0 {
			t.Errorf("sleeps = %v, want none", sleeps)
		}
	})
}

func TestClient_Headers(t *testing.T) {
	var gotAuth, gotContentType string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"id":"sp_1"}`))
	}))

	if _, err := c.CreateSpace(context.Background(), ports.SpacePayload{Name: "x"}); err != nil {
		t.Fatalf("CreateSpace() error = %v", err)
	}
	if gotAuth != "pk_test_token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestClient_CreateTask(t *testing.T) {
	var gotPath string
	var gotBody taskBody
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"tk_1","url":"https://app.example.com/t/tk_1"}`))
	}))

	due := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	obj, err := c.CreateTask(context.Background(), ports.TaskPayload{
		ListID:   "ls_1",
		Name:     "Site survey",
		Status:   "in progress",
		Priority: "high",
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if gotPath != "/list/ls_1/task" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.Priority != 2 {
		t.Errorf("priority = %d, want 2", gotBody.Priority)
	}
	if gotBody.DueDate == nil || *gotBody.DueDate != due.UnixMilli() {
		t.Errorf("due_date = %v, want %d", gotBody.DueDate, due.UnixMilli())
	}
	if gotBody.StartDate != nil {
		t.Errorf("start_date = %v, want omitted", gotBody.StartDate)
	}
	if obj.ID != "tk_1" || obj.URL != "https://app.example.com/t/tk_1" {
		t.Errorf("RemoteObject = %+v", obj)
	}
	if !strings.Contains(obj.Raw, "tk_1") {
		t.Error("Raw should carry the response body")
	}
}

func TestClient_CreateSubtask(t *testing.T) {
	var gotBody taskBody
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"tk_2"}`))
	}))

	_, err := c.CreateSubtask(context.Background(), ports.SubtaskPayload{
		ListID:       "ls_1",
		ParentTaskID: "tk_1",
		Name:         "Dig",
		Priority:     "urgent",
	})
	if err != nil {
		t.Fatalf("CreateSubtask() error = %v", err)
	}
	if gotBody.Parent != "tk_1" {
		t.Errorf("parent = %q, want tk_1", gotBody.Parent)
	}
	if gotBody.Priority != 1 {
		t.Errorf("priority = %d, want 1", gotBody.Priority)
	}
}

func TestClient_EnvelopeResponses(t *testing.T) {
	t.Run("checklist", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"checklist":{"id":"cl_1"}}`))
		}))
		obj, err := c.CreateChecklist(context.Background(), ports.ChecklistPayload{TaskID: "tk_1", Name: "Permits"})
		if err != nil {
			t.Fatalf("CreateChecklist() error = %v", err)
		}
		if obj.ID != "cl_1" {
			t.Errorf("ID = %q, want cl_1", obj.ID)
		}
	})

	t.Run("goal", func(t *testing.T) {
		var gotPath string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{"goal":{"id":"gl_1"}}`))
		}))
		obj, err := c.CreateGoal(context.Background(), ports.GoalPayload{Name: "Coverage"})
		if err != nil {
			t.Fatalf("CreateGoal() error = %v", err)
		}
		if gotPath != "/team/ws_1/goal" {
			t.Errorf("path = %q, want workspace-scoped goal endpoint", gotPath)
		}
		if obj.ID != "gl_1" {
			t.Errorf("ID = %q, want gl_1", obj.ID)
		}
	})

	t.Run("key result", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"key_result":{"id":"kr_1"}}`))
		}))
		obj, err := c.CreateKeyResult(context.Background(), ports.KeyResultPayload{GoalID: "gl_1", Name: "Wells", StepsEnd: 20})
		if err != nil {
			t.Fatalf("CreateKeyResult() error = %v", err)
		}
		if obj.ID != "kr_1" {
			t.Errorf("ID = %q, want kr_1", obj.ID)
		}
	})
}

func TestClient_Errors(t *testing.T) {
	t.Run("404 is collection missing", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		_, err := c.ListChecklists(context.Background(), "tk_404")
		if !errors.Is(err, domainErrors.ErrCollectionMissing) {
			t.Errorf("error = %v, want ErrCollectionMissing", err)
		}
	})

	t.Run("500 is remote call failure", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"err":"boom"}`))
		}))
		_, err := c.CreateSpace(context.Background(), ports.SpacePayload{Name: "x"})
		if !errors.Is(err, domainErrors.ErrRemoteCall) {
			t.Errorf("error = %v, want ErrRemoteCall", err)
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("error should carry the response detail: %v", err)
		}
	})

	t.Run("connection refused is remote call failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		c := NewClient(Config{BaseURL: server.URL, APIToken: "tok", WorkspaceID: "ws_1"},
			WithClock(time.Now, func(time.Duration) {}))
		_, err := c.CreateSpace(context.Background(), ports.SpacePayload{Name: "x"})
		if !errors.Is(err, domainErrors.ErrRemoteCall) {
			t.Errorf("error = %v, want ErrRemoteCall", err)
		}
	})
}

func TestClient_Delete(t *testing.T) {
	t.Run("known kinds", func(t *testing.T) {
		var paths []string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("method = %s, want DELETE", r.Method)
			}
			paths = append(paths, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))

		ctx := context.Background()
		if err := c.Delete(ctx, "task", "tk_1"); err != nil {
			t.Fatalf("Delete(task) error = %v", err)
		}
		if err := c.Delete(ctx, "time_entry", "te_1"); err != nil {
			t.Fatalf("Delete(time_entry) error = %v", err)
		}

		want := []string{"/task/tk_1", "/team/ws_1/time_entries/te_1"}
		for i, p := range want {
			if paths[i] != p {
				t.Errorf("path[%d] = %q, want %q", i, paths[i], p)
			}
		}
	})

	t.Run("unknown kind raises without a call", func(t *testing.T) {
		called := false
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		err := c.Delete(context.Background(), "widget", "x_1")
		if !errors.Is(err, domainErrors.ErrUnknownRemoteKind) {
			t.Errorf("error = %v, want ErrUnknownRemoteKind", err)
		}
		if called {
			t.Error("no HTTP call should be made for an unknown kind")
		}
	})
}

func TestClient_Collections(t *testing.T) {
	t.Run("goals with nested key results", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"goals":[{"id":"gl_1","name":"Coverage","percent_completed":40,
				"key_results":[{"id":"kr_1","name":"Wells","steps_start":0,"steps_end":20,"completed":8}]}]}`))
		}))

		goals, err := c.ListGoals(context.Background(), "ws_1")
		if err != nil {
			t.Fatalf("ListGoals() error = %v", err)
		}
		if len(goals) != 1 || len(goals[0].KeyResults) != 1 {
			t.Fatalf("goals = %+v", goals)
		}
		if goals[0].KeyResults[0].Completed != 8 {
			t.Errorf("Completed = %d, want 8", goals[0].KeyResults[0].Completed)
		}
	})

	t.Run("field values flatten to strings", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"custom_fields":[
				{"id":"cf_1","value":"1200"},
				{"id":"cf_2","value":42},
				{"id":"cf_3","value":null}]}`))
		}))

		values, err := c.ListFieldValues(context.Background(), "tk_1")
		if err != nil {
			t.Fatalf("ListFieldValues() error = %v", err)
		}
		if len(values) != 3 {
			t.Fatalf("got %d values, want 3", len(values))
		}
		want := []string{"1200", "42", ""}
		for i, v := range values {
			if v.Value != want[i] {
				t.Errorf("values[%d].Value = %q, want %q", i, v.Value, want[i])
			}
			if v.TaskRemoteID != "tk_1" {
				t.Errorf("values[%d].TaskRemoteID = %q", i, v.TaskRemoteID)
			}
		}
	})

	t.Run("attachments resolve uploader", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"attachments":[
				{"id":"att_1","title":"survey.pdf","size":2048,"user":{"id":99,"username":"amina"}},
				{"id":"att_2","title":"photo.jpg"}]}`))
		}))

		attachments, err := c.ListAttachments(context.Background(), "tk_1")
		if err != nil {
			t.Fatalf("ListAttachments() error = %v", err)
		}
		if len(attachments) != 2 {
			t.Fatalf("got %d attachments, want 2", len(attachments))
		}
		if attachments[0].User == nil || attachments[0].User.RemoteID != "99" {
			t.Errorf("first attachment user = %+v", attachments[0].User)
		}
		if attachments[1].User != nil {
			t.Error("second attachment should have no user")
		}
	})

	t.Run("statuses from list detail", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"ls_1","statuses":[
				{"id":"st_1","status":"to do","type":"open","orderindex":0},
				{"id":"st_2","status":"complete","type":"closed","orderindex":1}]}`))
		}))

		statuses, err := c.ListStatuses(context.Background(), "ls_1")
		if err != nil {
			t.Fatalf("ListStatuses() error = %v", err)
		}
		if len(statuses) != 2 || statuses[1].Status != "complete" {
			t.Errorf("statuses = %+v", statuses)
		}
	})
}
