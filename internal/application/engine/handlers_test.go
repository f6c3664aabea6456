package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// seedChain creates module → sub_program → component → activity and
// returns the four rows.
func seedChain(t *testing.T, rig *testRig) (*program.Module, *program.SubProgram, *program.Component, *program.Activity) {
	t.Helper()
	ctx := context.Background()

	m := &program.Module{Name: "Water Access"}
	if err := rig.entities.CreateModule(ctx, m); err != nil {
		t.Fatalf("CreateModule() error = %v", err)
	}
	sp := &program.SubProgram{ModuleID: m.ID, Name: "Wells"}
	if err := rig.entities.CreateSubProgram(ctx, sp); err != nil {
		t.Fatalf("CreateSubProgram() error = %v", err)
	}
	c := &program.Component{SubProgramID: sp.ID, Name: "Drilling"}
	if err := rig.entities.CreateComponent(ctx, c); err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}
	a := &program.Activity{ComponentID: c.ID, Name: "Site survey"}
	if err := rig.entities.CreateActivity(ctx, a); err != nil {
		t.Fatalf("CreateActivity() error = %v", err)
	}
	return m, sp, c, a
}

func handleTask(t *testing.T, rig *testRig, entityType program.EntityType, entityID int64, op outbox.Operation) (*ports.HandlerResult, error) {
	t.Helper()
	registry := NewDefaultRegistry(rig.entities, rig.gateway)
	h, err := registry.Get(entityType)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", entityType, err)
	}
	return h.Handle(context.Background(), &outbox.Task{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
	})
}

func TestHandlers_UpdateRequiresRemoteID(t *testing.T) {
	rig := newTestRig(t)
	m, _, _, _ := seedChain(t, rig)

	_, err := handleTask(t, rig, program.EntityModule, m.ID, outbox.OpUpdate)
	if !errors.Is(err, domainErrors.ErrDependencyNotSynced) {
		t.Errorf("error = %v, want ErrDependencyNotSynced", err)
	}
	if calls := rig.gateway.callLog(); len(calls) != 0 {
		t.Errorf("gateway calls = %v, want none", calls)
	}

	var syncErr *domainErrors.SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("error = %T, want *SyncError", err)
	}
	if syncErr.Code != domainErrors.CodeDependency {
		t.Errorf("error code = %s, want %s", syncErr.Code, domainErrors.CodeDependency)
	}
	if syncErr.Context["entity_id"] != m.ID {
		t.Errorf("error context entity_id = %v, want %d", syncErr.Context["entity_id"], m.ID)
	}
}

func TestHandlers_ActivityStatusMapping(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)
	_, _, c, a := seedChain(t, rig)
	rig.entities.MarkSynced(ctx, program.EntityComponent, c.ID, "li_1", "")

	res, err := handleTask(t, rig, program.EntityActivity, a.ID, outbox.OpCreate)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.RemoteID == "" {
		t.Error("RemoteID should be set")
	}

	calls := rig.gateway.callLog()
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "create_task:li_1:") {
		t.Fatalf("calls = %v", calls)
	}
	// Seeded activities default to draft/planned.
	if calls[0] != "create_task:li_1:to do" {
		t.Errorf("calls[0] = %q, want status %q", calls[0], "to do")
	}
}

func TestHandlers_SubActivityResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves list and parent task", func(t *testing.T) {
		rig := newTestRig(t)
		_, _, c, a := seedChain(t, rig)
		rig.entities.MarkSynced(ctx, program.EntityComponent, c.ID, "li_1", "")
		rig.entities.MarkSynced(ctx, program.EntityActivity, a.ID, "tk_1", "")

		sa := &program.SubActivity{ActivityID: a.ID, Name: "Soil samples"}
		if err := rig.entities.CreateSubActivity(ctx, sa); err != nil {
			t.Fatalf("CreateSubActivity() error = %v", err)
		}

		res, err := handleTask(t, rig, program.EntitySubActivity, sa.ID, outbox.OpCreate)
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if res.RemoteID == "" {
			t.Error("RemoteID should be set")
		}
		calls := rig.gateway.callLog()
		if len(calls) != 1 || calls[0] != "create_subtask:tk_1" {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("unsynced component blocks the subtask", func(t *testing.T) {
		rig := newTestRig(t)
		_, _, _, a := seedChain(t, rig)
		rig.entities.MarkSynced(ctx, program.EntityActivity, a.ID, "tk_1", "")

		sa := &program.SubActivity{ActivityID: a.ID, Name: "Soil samples"}
		if err := rig.entities.CreateSubActivity(ctx, sa); err != nil {
			t.Fatalf("CreateSubActivity() error = %v", err)
		}

		_, err := handleTask(t, rig, program.EntitySubActivity, sa.ID, outbox.OpCreate)
		if !errors.Is(err, domainErrors.ErrDependencyNotSynced) {
			t.Errorf("error = %v, want ErrDependencyNotSynced", err)
		}
		if calls := rig.gateway.callLog(); len(calls) != 0 {
			t.Errorf("gateway calls = %v, want none", calls)
		}
	})
}

func TestHandlers_UnsupportedOperations(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)
	_, _, _, a := seedChain(t, rig)
	rig.entities.MarkSynced(ctx, program.EntityActivity, a.ID, "tk_1", "")

	// Indicators, comments and time entries are append-only remotely.
	for _, entityType := range []program.EntityType{program.EntityIndicator, program.EntityComment, program.EntityTimeEntry} {
		t.Run(string(entityType), func(t *testing.T) {
			_, err := handleTask(t, rig, entityType, 1, outbox.OpUpdate)
			if !errors.Is(err, domainErrors.ErrUnknownOperation) {
				t.Errorf("error = %v, want ErrUnknownOperation", err)
			}
		})
	}
}

func TestHandlers_DeletePrefersTaskRemoteID(t *testing.T) {
	ctx := context.Background()
	rig := newTestRig(t)
	m, _, _, _ := seedChain(t, rig)
	rig.entities.MarkSynced(ctx, program.EntityModule, m.ID, "sp_stale", "")

	registry := NewDefaultRegistry(rig.entities, rig.gateway)
	h, _ := registry.Get(program.EntityModule)
	_, err := h.Handle(ctx, &outbox.Task{
		EntityType: program.EntityModule,
		EntityID:   m.ID,
		Operation:  outbox.OpDelete,
		RemoteID:   "sp_task",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	calls := rig.gateway.callLog()
	if len(calls) != 1 || calls[0] != "delete:space:sp_task" {
		t.Errorf("calls = %v, want the id recorded on the task", calls)
	}
}

func TestHandlers_DeleteMissingLocalRow(t *testing.T) {
	rig := newTestRig(t)

	res, err := handleTask(t, rig, program.EntityModule, 9999, outbox.OpDelete)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(res.Response, "nothing to delete") {
		t.Errorf("Response = %q", res.Response)
	}
	if calls := rig.gateway.callLog(); len(calls) != 0 {
		t.Errorf("gateway calls = %v, want none", calls)
	}
}
