package program

import "testing"

func TestEntityTypeValid(t *testing.T) {
	for _, et := range AllEntityTypes {
		if !et.Valid() {
			t.Errorf("%s should be valid", et)
		}
	}
	for _, s := range []string{"", "project", "Module", "task"} {
		if EntityType(s).Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestParseEntityType(t *testing.T) {
	et, err := ParseEntityType("sub_activity")
	if err != nil {
		t.Fatalf("ParseEntityType: %v", err)
	}
	if et != EntitySubActivity {
		t.Errorf("got %s, want %s", et, EntitySubActivity)
	}

	if _, err := ParseEntityType("milestone"); err == nil {
		t.Error("expected error for unknown entity type")
	}
}

func TestEntityTypeParent(t *testing.T) {
	tests := []struct {
		child  EntityType
		parent EntityType
		has    bool
	}{
		{EntityModule, "", false},
		{EntityGoal, "", false},
		{EntitySubProgram, EntityModule, true},
		{EntityComponent, EntitySubProgram, true},
		{EntityActivity, EntityComponent, true},
		{EntitySubActivity, EntityActivity, true},
		{EntityChecklistBatch, EntityActivity, true},
		{EntityComment, EntityActivity, true},
		{EntityTimeEntry, EntityActivity, true},
		{EntityIndicator, EntityGoal, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.child), func(t *testing.T) {
			parent, has := tt.child.Parent()
			if has != tt.has {
				t.Fatalf("Parent() has = %v, want %v", has, tt.has)
			}
			if has && parent != tt.parent {
				t.Errorf("Parent() = %s, want %s", parent, tt.parent)
			}
		})
	}
}

func TestSyncMetaSynced(t *testing.T) {
	var m SyncMeta
	if m.Synced() {
		t.Error("zero meta should not be synced")
	}
	m.RemoteID = "sp_42"
	if !m.Synced() {
		t.Error("meta with remote id should be synced")
	}
}
