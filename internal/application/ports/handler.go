package ports

import (
	"context"

	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// HandlerResult is what a handler reports on success. RemoteID is empty
// for deletes.
type HandlerResult struct {
	RemoteID string
	Response string
}

// Handler translates one entity kind's queue tasks into remote gateway
// calls. Handlers never touch the queue; the manager owns all task
// state transitions and logging.
type Handler interface {
	EntityType() program.EntityType
	Handle(ctx context.Context, task *outbox.Task) (*HandlerResult, error)
}
