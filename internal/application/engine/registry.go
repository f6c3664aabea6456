package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// Registry holds the entity handlers the manager dispatches to.
type Registry struct {
	mu       sync.RWMutex
	handlers map[program.EntityType]ports.Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[program.EntityType]ports.Handler),
	}
}

// Register adds a handler, keyed by its entity type. Registering the
// same type twice replaces the earlier handler.
func (r *Registry) Register(h ports.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.EntityType()] = h
}

// Get returns the handler for an entity type.
func (r *Registry) Get(t program.EntityType) (ports.Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: no handler for %q", domainErrors.ErrUnknownEntityType, t)
	}
	return h, nil
}

// Types returns the registered entity types, sorted for stable output.
func (r *Registry) Types() []program.EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]program.EntityType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// NewDefaultRegistry wires one handler per syncable entity type against
// the given store and gateway.
func NewDefaultRegistry(store ports.EntityStore, gateway ports.RemoteGateway) *Registry {
	r := NewRegistry()
	r.Register(&ModuleHandler{store: store, gateway: gateway})
	r.Register(&SubProgramHandler{store: store, gateway: gateway})
	r.Register(&ComponentHandler{store: store, gateway: gateway})
	r.Register(&ActivityHandler{store: store, gateway: gateway})
	r.Register(&SubActivityHandler{store: store, gateway: gateway})
	r.Register(&ChecklistBatchHandler{store: store, gateway: gateway})
	r.Register(&GoalHandler{store: store, gateway: gateway})
	r.Register(&IndicatorHandler{store: store, gateway: gateway})
	r.Register(&CommentHandler{store: store, gateway: gateway})
	r.Register(&TimeEntryHandler{store: store, gateway: gateway})
	return r
}
