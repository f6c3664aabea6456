package engine

import (
	"context"
	"fmt"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// ResolveRemoteParent returns the remote id of the parent an entity
// must attach to. Roots resolve to "". A parent that exists locally but
// has not synced yet is the ordering failure every handler fails fast
// on, before any gateway call.
func ResolveRemoteParent(ctx context.Context, store ports.EntityStore, t program.EntityType, id int64) (string, error) {
	parentType, ok := t.Parent()
	if !ok {
		return "", nil
	}

	parentID, ok, err := store.ParentID(ctx, t, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	remoteID, ok, err := store.RemoteID(ctx, parentType, parentID)
	if err != nil {
		return "", err
	}
	if !ok {
		gateErr := domainErrors.NewError(domainErrors.CodeDependency,
			fmt.Sprintf("%s %d awaits %s %d", t, id, parentType, parentID),
			domainErrors.ErrDependencyNotSynced)
		domainErrors.WithContext(gateErr, "entity_type", string(t))
		domainErrors.WithContext(gateErr, "entity_id", id)
		return "", gateErr
	}
	return remoteID, nil
}

// resolveOwnRemoteID returns the entity's own remote id, required for
// updates. A row that has never synced cannot be updated remotely yet;
// that is the same ordering failure as a missing parent.
func resolveOwnRemoteID(ctx context.Context, store ports.EntityStore, t program.EntityType, id int64) (string, error) {
	remoteID, ok, err := store.RemoteID(ctx, t, id)
	if err != nil {
		return "", err
	}
	if !ok {
		gateErr := domainErrors.NewError(domainErrors.CodeDependency,
			fmt.Sprintf("%s %d has not synced yet", t, id),
			domainErrors.ErrDependencyNotSynced)
		domainErrors.WithContext(gateErr, "entity_type", string(t))
		domainErrors.WithContext(gateErr, "entity_id", id)
		return "", gateErr
	}
	return remoteID, nil
}
