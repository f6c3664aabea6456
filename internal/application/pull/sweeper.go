package pull

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldstack/progsync/internal/application/ports"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/infrastructure/logging"
	"github.com/fieldstack/progsync/internal/infrastructure/tracing"
)

// Scope kinds the sweeper walks.
const (
	ScopeModule    = "module"
	ScopeComponent = "component"
	ScopeActivity  = "activity"
	ScopeWorkspace = "workspace"
)

// Report summarizes one sweep across every synced scope row.
type Report struct {
	Scopes   int
	Upserted int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Sweeper walks every synced module, component and activity and runs
// the matching agents against each, then the workspace-level goals
// agent once. One failing agent never aborts the sweep.
type Sweeper struct {
	entities    ports.EntityStore
	collections ports.RemoteCollections
	mirror      ports.MirrorStore
	logs        ports.LogStore
	logger      *logging.Logger
	tracer      *tracing.Tracer
	workspaceID string

	moduleAgents    []Agent
	componentAgents []Agent
	activityAgents  []Agent
	workspaceAgents []Agent
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

func WithSweeperLogger(logger *logging.Logger) SweeperOption {
	return func(s *Sweeper) { s.logger = logger }
}

func WithSweeperTracer(tracer *tracing.Tracer) SweeperOption {
	return func(s *Sweeper) { s.tracer = tracer }
}

// NewSweeper wires the full agent set. An empty workspaceID disables
// the goals agent; everything else still runs.
func NewSweeper(entities ports.EntityStore, collections ports.RemoteCollections, mirror ports.MirrorStore, logs ports.LogStore, workspaceID string, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		entities:    entities,
		collections: collections,
		mirror:      mirror,
		logs:        logs,
		logger:      logging.Default(),
		tracer:      tracing.Default(),
		workspaceID: workspaceID,
		moduleAgents: []Agent{
			&SpaceTagAgent{collections: collections, mirror: mirror},
		},
		componentAgents: []Agent{
			&CustomFieldAgent{collections: collections, mirror: mirror},
			&StatusAgent{collections: collections, mirror: mirror},
			&ViewAgent{collections: collections, mirror: mirror},
		},
		activityAgents: []Agent{
			&AttachmentAgent{collections: collections, mirror: mirror},
			&ChecklistAgent{collections: collections, mirror: mirror},
			&TaskTagAgent{collections: collections, mirror: mirror},
			&FieldValueAgent{collections: collections, mirror: mirror},
		},
		workspaceAgents: []Agent{
			&GoalAgent{collections: collections, mirror: mirror},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run refreshes every mirror collection reachable from the synced rows.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}

	modules, err := s.entities.SyncedModules(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		scope := Scope{Kind: ScopeModule, LocalID: m.ID, RemoteID: m.RemoteID}
		report.Scopes++
		s.runAgents(ctx, s.moduleAgents, scope, report)
	}

	components, err := s.entities.SyncedComponents(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		scope := Scope{Kind: ScopeComponent, LocalID: c.ID, RemoteID: c.RemoteID}
		report.Scopes++
		s.runAgents(ctx, s.componentAgents, scope, report)
	}

	activities, err := s.entities.SyncedActivities(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		scope := Scope{Kind: ScopeActivity, LocalID: a.ID, RemoteID: a.RemoteID}
		report.Scopes++
		s.runAgents(ctx, s.activityAgents, scope, report)
	}

	if s.workspaceID != "" {
		scope := Scope{Kind: ScopeWorkspace, RemoteID: s.workspaceID}
		report.Scopes++
		s.runAgents(ctx, s.workspaceAgents, scope, report)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (s *Sweeper) runAgents(ctx context.Context, agents []Agent, scope Scope, report *Report) {
	for _, agent := range agents {
		s.runAgent(ctx, agent, scope, report)
	}
}

// runAgent contains one agent run. Every outcome is absorbed into the
// report and the audit log; the caller never sees an error.
func (s *Sweeper) runAgent(ctx context.Context, agent Agent, scope Scope, report *Report) {
	spanCtx, span := s.tracer.StartPullSpan(ctx, agent.Name(), scope.RemoteID)
	start := time.Now()

	upserted, err := agent.Pull(spanCtx, scope)
	switch {
	case errors.Is(err, domainErrors.ErrCollectionMissing):
		// The remote collection does not exist for this scope; treat
		// it as empty.
		report.Skipped++
		span.SetEmpty()
		span.End()
		logging.LogPullSkipped(spanCtx, s.logger, agent.Name(), scope.RemoteID)
		s.appendLog(ctx, agent, scope, outbox.LogSuccess, "collection missing, treated as empty")

	case err != nil:
		report.Failed++
		span.EndWithError(err)
		s.logger.WarnContext(spanCtx, "mirror pull failed",
			"agent", agent.Name(),
			"scope_kind", scope.Kind,
			"scope_id", scope.RemoteID,
			"error", err)
		s.appendLog(ctx, agent, scope, outbox.LogFailed, err.Error())

	default:
		report.Upserted += upserted
		span.SetRowCount(upserted)
		span.End()
		logging.LogPullComplete(spanCtx, s.logger, agent.Name(), scope.RemoteID, upserted, time.Since(start))
		s.appendLog(ctx, agent, scope, outbox.LogSuccess, fmt.Sprintf("%s: %d rows", agent.Name(), upserted))
	}
}

func (s *Sweeper) appendLog(ctx context.Context, agent Agent, scope Scope, status outbox.LogStatus, message string) {
	entry := &outbox.LogEntry{
		Operation:  "pull:" + agent.Name(),
		EntityType: scope.Kind,
		EntityID:   scope.LocalID,
		Direction:  outbox.DirectionPull,
		Status:     status,
		Message:    message,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "could not append pull log entry", "error", err)
	}
}
