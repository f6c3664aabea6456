package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fieldstack/progsync/internal/adapters/store/sqlite"
	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// fakeGateway records calls and hands out sequential remote ids. err
// makes every call fail; started/release let a test hold a call open.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []string
	nextID  int
	err     error
	started chan struct{}
	release chan struct{}
}

func (g *fakeGateway) record(call string) (*ports.RemoteObject, error) {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	if g.err != nil {
		return nil, g.err
	}
	g.nextID++
	return &ports.RemoteObject{
		ID:  fmt.Sprintf("r_%d", g.nextID),
		URL: fmt.Sprintf("https://app.example.com/r_%d", g.nextID),
		Raw: "{}",
	}, nil
}

func (g *fakeGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) CreateSpace(ctx context.Context, p ports.SpacePayload) (*ports.RemoteObject, error) {
	return g.record("create_space:" + p.Name)
}
func (g *fakeGateway) UpdateSpace(ctx context.Context, remoteID string, p ports.SpacePayload) (*ports.RemoteObject, error) {
	return g.record("update_space:" + remoteID)
}
func (g *fakeGateway) CreateFolder(ctx context.Context, p ports.FolderPayload) (*ports.RemoteObject, error) {
	return g.record("create_folder:" + p.SpaceID)
}
func (g *fakeGateway) UpdateFolder(ctx context.Context, remoteID string, p ports.FolderPayload) (*ports.RemoteObject, error) {
	return g.record("update_folder:" + remoteID)
}
func (g *fakeGateway) CreateList(ctx context.Context, p ports.ListPayload) (*ports.RemoteObject, error) {
	return g.record("create_list:" + p.FolderID)
}
func (g *fakeGateway) UpdateList(ctx context.Context, remoteID string, p ports.ListPayload) (*ports.RemoteObject, error) {
	return g.record("update_list:" + remoteID)
}
func (g *fakeGateway) CreateTask(ctx context.Context, p ports.TaskPayload) (*ports.RemoteObject, error) {
	return g.record("create_task:" + p.ListID + ":" + p.Status)
}
func (g *fakeGateway) UpdateTask(ctx context.Context, remoteID string, p ports.TaskPayload) (*ports.RemoteObject, error) {
	return g.record("update_task:" + remoteID + ":" + p.Status)
}
func (g *fakeGateway) CreateSubtask(ctx context.Context, p ports.SubtaskPayload) (*ports.RemoteObject, error) {
	return g.record("create_subtask:" + p.ParentTaskID)
}
func (g *fakeGateway) CreateChecklist(ctx context.Context, p ports.ChecklistPayload) (*ports.RemoteObject, error) {
	return g.record("create_checklist:" + p.TaskID)
}
func (g *fakeGateway) CreateChecklistItem(ctx context.Context, p ports.ChecklistItemPayload) (*ports.RemoteObject, error) {
	return g.record("create_checklist_item:" + p.ChecklistID + ":" + p.Name)
}
func (g *fakeGateway) CreateGoal(ctx context.Context, p ports.GoalPayload) (*ports.RemoteObject, error) {
	return g.record("create_goal:" + p.Name)
}
func (g *fakeGateway) UpdateGoal(ctx context.Context, remoteID string, p ports.GoalPayload) (*ports.RemoteObject, error) {
	return g.record("update_goal:" + remoteID)
}
func (g *fakeGateway) CreateKeyResult(ctx context.Context, p ports.KeyResultPayload) (*ports.RemoteObject, error) {
	return g.record("create_key_result:" + p.GoalID)
}
func (g *fakeGateway) CreateComment(ctx context.Context, p ports.CommentPayload) (*ports.RemoteObject, error) {
	return g.record("create_comment:" + p.TaskID)
}
func (g *fakeGateway) CreateTimeEntry(ctx context.Context, p ports.TimeEntryPayload) (*ports.RemoteObject, error) {
	return g.record("create_time_entry:" + p.TaskID)
}
func (g *fakeGateway) Delete(ctx context.Context, kind, remoteID string) error {
	_, err := g.record("delete:" + kind + ":" + remoteID)
	return err
}

// testRig wires real repositories on a temp database around a fake
// gateway.
type testRig struct {
	queue    *sqlite.QueueRepository
	entities *sqlite.EntityRepository
	logs     *sqlite.LogRepository
	gateway  *fakeGateway
	manager  *Manager
}

func newTestRig(t *testing.T, opts ...ManagerOption) *testRig {
	t.Helper()

	conn, err := sqlite.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	if err := conn.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	rig := &testRig{
		queue:    sqlite.NewQueueRepository(conn),
		entities: sqlite.NewEntityRepository(conn),
		logs:     sqlite.NewLogRepository(conn),
		gateway:  &fakeGateway{},
	}
	registry := NewDefaultRegistry(rig.entities, rig.gateway)
	rig.manager = NewManager(rig.queue, registry, rig.logs, opts...)
	return rig
}

func (r *testRig) enqueue(t *testing.T, entityType program.EntityType, entityID int64, op outbox.Operation, priority outbox.Priority) *outbox.Task {
	t.Helper()
	task, err := r.queue.Enqueue(context.Background(), ports.EnqueueRequest{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Priority:   priority,
	})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	return task
}

func TestManager_Drain(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes a module create", func(t *testing.T) {
		rig := newTestRig(t)
		m := &program.Module{Name: "Water Access"}
		if err := rig.entities.CreateModule(ctx, m); err != nil {
			t.Fatalf("CreateModule() error = %v", err)
		}
		task := rig.enqueue(t, program.EntityModule, m.ID, outbox.OpCreate, outbox.PriorityHighest)

		result, err := rig.manager.Drain(ctx)
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if result.Processed != 1 || result.Completed != 1 || result.Failed != 0 {
			t.Errorf("result = %+v", result)
		}

		got, err := rig.queue.Get(ctx, task.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Status != outbox.StatusCompleted {
			t.Errorf("task Status = %s, want completed", got.Status)
		}
		if got.RemoteID == "" {
			t.Error("task RemoteID should be set")
		}

		remoteID, ok, err := rig.entities.RemoteID(ctx, program.EntityModule, m.ID)
		if err != nil || !ok {
			t.Fatalf("RemoteID() = %v, %v", ok, err)
		}
		if remoteID != got.RemoteID {
			t.Errorf("entity remote id %q != task remote id %q", remoteID, got.RemoteID)
		}

		entries, err := rig.logs.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Status != outbox.LogSuccess || entries[0].Direction != outbox.DirectionPush {
			t.Errorf("log entries = %+v", entries)
		}
	})

	t.Run("processes tasks in priority order", func(t *testing.T) {
		rig := newTestRig(t)
		var ids []int64
		for i := 0; i < 5; i++ {
			m := &program.Module{Name: fmt.Sprintf("m%d", i)}
			if err := rig.entities.CreateModule(ctx, m); err != nil {
				t.Fatalf("CreateModule() error = %v", err)
			}
			ids = append(ids, m.ID)
		}
		names := map[outbox.Priority]string{5: "m0", 1: "m1", 3: "m2", 2: "m3", 4: "m4"}
		for i, p := range []outbox.Priority{5, 1, 3, 2, 4} {
			rig.enqueue(t, program.EntityModule, ids[i], outbox.OpCreate, p)
		}

		if _, err := rig.manager.Drain(ctx); err != nil {
			t.Fatalf("Drain() error = %v", err)
		}

		calls := rig.gateway.callLog()
		if len(calls) != 5 {
			t.Fatalf("gateway calls = %v", calls)
		}
		for i, p := range []outbox.Priority{1, 2, 3, 4, 5} {
			want := "create_space:" + names[p]
			if calls[i] != want {
				t.Errorf("calls[%d] = %q, want %q", i, calls[i], want)
			}
		}
	})

	t.Run("empty queue is a no-op", func(t *testing.T) {
		rig := newTestRig(t)
		result, err := rig.manager.Drain(ctx)
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if result.Processed != 0 {
			t.Errorf("Processed = %d, want 0", result.Processed)
		}
	})

	t.Run("single flight", func(t *testing.T) {
		rig := newTestRig(t)
		m := &program.Module{Name: "Water Access"}
		rig.entities.CreateModule(ctx, m)
		rig.enqueue(t, program.EntityModule, m.ID, outbox.OpCreate, outbox.PriorityHighest)

		rig.gateway.started = make(chan struct{})
		rig.gateway.release = make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			rig.manager.Drain(ctx)
		}()

		<-rig.gateway.started
		if _, err := rig.manager.Drain(ctx); !errors.Is(err, domainErrors.ErrDrainInProgress) {
			t.Errorf("concurrent Drain() error = %v, want ErrDrainInProgress", err)
		}
		close(rig.gateway.release)
		wg.Wait()

		// The queue is drained now, so a fresh drain is allowed again.
		if _, err := rig.manager.Drain(ctx); err != nil {
			t.Errorf("follow-up Drain() error = %v", err)
		}
	})
}

func TestManager_DependencyGating(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)

	m := &program.Module{Name: "Water Access"}
	rig.entities.CreateModule(ctx, m)
	sp := &program.SubProgram{ModuleID: m.ID, Name: "Wells"}
	rig.entities.CreateSubProgram(ctx, sp)

	// The parent module has never synced, so the sub-program create must
	// fail before any remote call.
	task := rig.enqueue(t, program.EntitySubProgram, sp.ID, outbox.OpCreate, outbox.PriorityHighest)

	result, err := rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if calls := rig.gateway.callLog(); len(calls) != 0 {
		t.Errorf("gateway calls = %v, want none", calls)
	}

	got, err := rig.queue.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != outbox.StatusFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if got.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", got.RetryCount)
	}
	if !strings.Contains(got.LastError, "awaits") {
		t.Errorf("LastError = %q, should name the missing parent", got.LastError)
	}

	entries, _ := rig.logs.Recent(ctx, 10)
	if len(entries) != 1 || entries[0].Status != outbox.LogFailed {
		t.Errorf("log entries = %+v", entries)
	}
}

func TestManager_ParentBeforeChild(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)

	m := &program.Module{Name: "Water Access"}
	rig.entities.CreateModule(ctx, m)
	sp := &program.SubProgram{ModuleID: m.ID, Name: "Wells"}
	rig.entities.CreateSubProgram(ctx, sp)

	// Parent at higher priority: both succeed in one drain because the
	// module lands first and the folder create sees its remote id.
	rig.enqueue(t, program.EntityModule, m.ID, outbox.OpCreate, outbox.PriorityHighest)
	rig.enqueue(t, program.EntitySubProgram, sp.ID, outbox.OpCreate, outbox.PriorityHigh)

	result, err := rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Completed != 2 {
		t.Errorf("Completed = %d, want 2", result.Completed)
	}

	calls := rig.gateway.callLog()
	if len(calls) != 2 || !strings.HasPrefix(calls[0], "create_space") || !strings.HasPrefix(calls[1], "create_folder:r_1") {
		t.Errorf("calls = %v", calls)
	}
}

func TestManager_RetryExhaustion(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t, WithRetryPolicy(outbox.RetryPolicy{Mode: outbox.RetryRequeue, BaseBackoff: 0}))

	m := &program.Module{Name: "Water Access"}
	rig.entities.CreateModule(ctx, m)
	task := rig.enqueue(t, program.EntityModule, m.ID, outbox.OpCreate, outbox.PriorityHighest)

	rig.gateway.err = fmt.Errorf("%w: remote down", domainErrors.ErrRemoteCall)

	// Each drain requeues the failed task (zero backoff) and burns one
	// retry, until the budget is gone.
	for i := 0; i < outbox.DefaultMaxRetries; i++ {
		if _, err := rig.manager.Drain(ctx); err != nil {
			t.Fatalf("Drain() #%d error = %v", i+1, err)
		}
	}

	got, err := rig.queue.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != outbox.StatusFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if !got.Exhausted() {
		t.Errorf("RetryCount = %d, want exhausted", got.RetryCount)
	}

	// A further drain finds nothing to requeue or process.
	result, err := rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("final Drain() error = %v", err)
	}
	if result.Processed != 0 || result.Requeued != 0 {
		t.Errorf("result = %+v, want idle", result)
	}

	entries, _ := rig.logs.Recent(ctx, 10)
	if len(entries) != outbox.DefaultMaxRetries {
		t.Errorf("log entries = %d, want one per attempt", len(entries))
	}
}

func TestManager_ManualRetryPolicy(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)

	m := &program.Module{Name: "Water Access"}
	rig.entities.CreateModule(ctx, m)
	task := rig.enqueue(t, program.EntityModule, m.ID, outbox.OpCreate, outbox.PriorityHighest)

	rig.gateway.err = fmt.Errorf("%w: remote down", domainErrors.ErrRemoteCall)
	rig.manager.Drain(ctx)

	// Under the default manual policy a failed task stays failed; the
	// next drain does not pick it up.
	rig.gateway.err = nil
	result, err := rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("Processed = %d, want 0", result.Processed)
	}

	// An operator requeue makes it eligible again.
	if err := rig.queue.Requeue(ctx, task.ID, 0); err != nil {
		t.Fatalf("Requeue() error = %v", err)
	}
	result, err = rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Completed != 1 {
		t.Errorf("Completed = %d, want 1", result.Completed)
	}
}

func TestManager_ChecklistBatch(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)

	m := &program.Module{Name: "Water Access"}
	rig.entities.CreateModule(ctx, m)
	sp := &program.SubProgram{ModuleID: m.ID, Name: "Wells"}
	rig.entities.CreateSubProgram(ctx, sp)
	c := &program.Component{SubProgramID: sp.ID, Name: "Drilling"}
	rig.entities.CreateComponent(ctx, c)
	a := &program.Activity{ComponentID: c.ID, Name: "Site survey"}
	rig.entities.CreateActivity(ctx, a)
	rig.entities.MarkSynced(ctx, program.EntityActivity, a.ID, "tk_1", "")

	b := &program.ChecklistBatch{
		ActivityID: a.ID,
		Name:       "Permits",
		Items: []program.ChecklistItem{
			{Name: "County permit"},
			{Name: "Water board signoff", Done: true},
		},
	}
	if err := rig.entities.CreateChecklistBatch(ctx, b); err != nil {
		t.Fatalf("CreateChecklistBatch() error = %v", err)
	}

	rig.enqueue(t, program.EntityChecklistBatch, b.ID, outbox.OpCreate, outbox.PriorityNormal)
	result, err := rig.manager.Drain(ctx)
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Completed != 1 {
		t.Fatalf("result = %+v", result)
	}

	calls := rig.gateway.callLog()
	if len(calls) != 3 {
		t.Fatalf("calls = %v, want checklist + 2 items", calls)
	}
	if calls[0] != "create_checklist:tk_1" {
		t.Errorf("calls[0] = %q", calls[0])
	}

	got, err := rig.entities.ChecklistBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("ChecklistBatch() error = %v", err)
	}
	for i, item := range got.Items {
		if item.RemoteID == "" {
			t.Errorf("item %d not marked synced", i)
		}
	}
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes via kind map", func(t *testing.T) {
		rig := newTestRig(t)
		m := &program.Module{Name: "Water Access"}
		rig.entities.CreateModule(ctx, m)
		rig.entities.MarkSynced(ctx, program.EntityModule, m.ID, "sp_1", "")

		rig.enqueue(t, program.EntityModule, m.ID, outbox.OpDelete, outbox.PriorityHighest)
		result, err := rig.manager.Drain(ctx)
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if result.Completed != 1 {
			t.Fatalf("result = %+v", result)
		}
		calls := rig.gateway.callLog()
		if len(calls) != 1 || calls[0] != "delete:space:sp_1" {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("never-synced delete is a no-op success", func(t *testing.T) {
		rig := newTestRig(t)
		m := &program.Module{Name: "Water Access"}
		rig.entities.CreateModule(ctx, m)

		rig.enqueue(t, program.EntityModule, m.ID, outbox.OpDelete, outbox.PriorityHighest)
		result, err := rig.manager.Drain(ctx)
		if err != nil {
			t.Fatalf("Drain() error = %v", err)
		}
		if result.Completed != 1 {
			t.Errorf("result = %+v", result)
		}
		if calls := rig.gateway.callLog(); len(calls) != 0 {
			t.Errorf("calls = %v, want none", calls)
		}
	})
}

func TestManager_DrainDuration(t *testing.T) {
	rig := newTestRig(t)
	result, err := rig.manager.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if result.Duration < 0 || result.Duration > time.Minute {
		t.Errorf("Duration = %v", result.Duration)
	}
	if result.DrainID == "" {
		t.Error("DrainID should be set")
	}
}
