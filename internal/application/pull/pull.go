// Package pull refreshes the local mirror tables from the remote
// system. Each agent covers one remote sub-collection and upserts into
// one mirror table, keyed on the remote object's id, so a repeated run
// against unchanged remote data changes nothing. The pull path never
// deletes: rows that disappear remotely simply stop being refreshed.
//
// Pull errors are contained. A failed collection fetch is logged and
// the sweep moves on; a missing remote collection (404) counts as an
// empty one.
package pull

import "context"

// Scope identifies the synced local row an agent refreshes against.
type Scope struct {
	// Kind is the local entity the scope row belongs to: "module",
	// "component", "activity" or "workspace".
	Kind string
	// LocalID is the scope row's local primary key. Zero for the
	// workspace scope.
	LocalID int64
	// RemoteID is the remote counterpart the collection hangs off.
	RemoteID string
}

// Agent mirrors one remote sub-collection for one scope row.
type Agent interface {
	// Name identifies the collection in logs and spans.
	Name() string
	// Pull fetches the collection for the scope and upserts every row,
	// returning the number of upserts performed.
	Pull(ctx context.Context, scope Scope) (int, error)
}
