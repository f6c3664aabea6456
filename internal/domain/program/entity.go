// Package program defines the tracked program-management hierarchy:
// module → sub-program → component → activity → sub-activity, with
// checklist batches, goals/indicators, comments, and time entries
// hanging off the tree. Every tracked row carries sync metadata tying
// it to its remote counterpart.
package program

import "fmt"

// EntityType is the closed enum of syncable entity kinds.
type EntityType string

const (
	EntityModule         EntityType = "module"
	EntitySubProgram     EntityType = "sub_program"
	EntityComponent      EntityType = "component"
	EntityActivity       EntityType = "activity"
	EntitySubActivity    EntityType = "sub_activity"
	EntityChecklistBatch EntityType = "checklist_batch"
	EntityGoal           EntityType = "goal"
	EntityIndicator      EntityType = "indicator"
	EntityComment        EntityType = "comment"
	EntityTimeEntry      EntityType = "time_entry"
)

// AllEntityTypes lists every syncable kind, in hierarchy order.
var AllEntityTypes = []EntityType{
	EntityModule,
	EntitySubProgram,
	EntityComponent,
	EntityActivity,
	EntitySubActivity,
	EntityChecklistBatch,
	EntityGoal,
	EntityIndicator,
	EntityComment,
	EntityTimeEntry,
}

// Valid reports whether t is a member of the closed enum.
func (t EntityType) Valid() bool {
	switch t {
	case EntityModule, EntitySubProgram, EntityComponent, EntityActivity,
		EntitySubActivity, EntityChecklistBatch, EntityGoal,
		EntityIndicator, EntityComment, EntityTimeEntry:
		return true
	}
	return false
}

// ParseEntityType converts a string to an EntityType or errors.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// parentOf maps each entity kind to the kind whose remote id must exist
// before a create is attempted. Roots (module, goal) have no parent.
var parentOf = map[EntityType]EntityType{
	EntitySubProgram:     EntityModule,
	EntityComponent:      EntitySubProgram,
	EntityActivity:       EntityComponent,
	EntitySubActivity:    EntityActivity,
	EntityChecklistBatch: EntityActivity,
	EntityComment:        EntityActivity,
	EntityTimeEntry:      EntityActivity,
	EntityIndicator:      EntityGoal,
}

// Parent returns the parent kind of t, and whether t has one.
func (t EntityType) Parent() (EntityType, bool) {
	p, ok := parentOf[t]
	return p, ok
}
