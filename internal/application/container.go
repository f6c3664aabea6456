// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"fmt"

	"github.com/fieldstack/progsync/internal/adapters/remote/clickup"
	"github.com/fieldstack/progsync/internal/adapters/store/sqlite"
	"github.com/fieldstack/progsync/internal/application/engine"
	"github.com/fieldstack/progsync/internal/application/pull"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/infrastructure/config"
	"github.com/fieldstack/progsync/internal/infrastructure/logging"
	"github.com/fieldstack/progsync/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of the
// database connection, the remote client, and the sync services built
// on top of them.
type Container struct {
	config  *config.Config
	verbose bool

	// Database connection and repositories
	conn       *sqlite.Connection
	queueRepo  *sqlite.QueueRepository
	entityRepo *sqlite.EntityRepository
	mirrorRepo *sqlite.MirrorRepository
	logRepo    *sqlite.LogRepository

	// Remote client and sync services. Nil until an API token is
	// configured; queue operations work without them.
	client  *clickup.Client
	manager *engine.Manager
	sweeper *pull.Sweeper

	logger *logging.Logger
	tracer *tracing.Tracer
}

// NewContainer creates a new dependency injection container with all
// services initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	c.initObservability()

	if err := c.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initRemote()

	return c, nil
}

func (c *Container) initObservability() {
	level := logging.Level(c.config.Logging.Level)
	if c.verbose {
		level = logging.LevelDebug
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = logging.Format(c.config.Logging.Format)
	c.logger = logging.Init(logCfg)

	t := c.config.Observability.Tracing
	tracer, err := tracing.Init(context.Background(), tracing.Config{
		Enabled:      t.Enabled,
		ExporterType: tracing.ExporterType(t.ExporterType),
		OTLPEndpoint: t.OTLPEndpoint,
		ServiceName:  t.ServiceName,
		SampleRate:   t.SampleRate,
	})
	if err != nil {
		c.logger.Warn("tracing disabled", "error", err)
		tracer = tracing.Default()
	}
	c.tracer = tracer
}

func (c *Container) initDatabase() error {
	conn, err := sqlite.NewConnection(c.config.Database.Path)
	if err != nil {
		return err
	}
	if err := conn.Open(); err != nil {
		return err
	}

	c.conn = conn
	c.queueRepo = sqlite.NewQueueRepository(conn)
	c.entityRepo = sqlite.NewEntityRepository(conn)
	c.mirrorRepo = sqlite.NewMirrorRepository(conn)
	c.logRepo = sqlite.NewLogRepository(conn)
	return nil
}

// initRemote wires the remote client and the sync services that need
// it. Without an API token the container still serves local queue and
// log operations.
func (c *Container) initRemote() {
	r := c.config.Remote
	if r.APIToken == "" {
		return
	}

	c.client = clickup.NewClient(clickup.Config{
		BaseURL:     r.BaseURL,
		APIToken:    r.APIToken,
		WorkspaceID: r.WorkspaceID,
		MinInterval: r.MinCallInterval,
		Timeout:     r.CallTimeout,
	}, clickup.WithLogger(c.logger))

	registry := engine.NewDefaultRegistry(c.entityRepo, c.client)
	c.manager = engine.NewManager(c.queueRepo, registry, c.logRepo,
		engine.WithBatchSize(c.config.Sync.BatchSize),
		engine.WithRetryPolicy(c.retryPolicy()),
		engine.WithManagerLogger(c.logger),
		engine.WithTracer(c.tracer),
	)

	c.sweeper = pull.NewSweeper(c.entityRepo, c.client, c.mirrorRepo, c.logRepo, r.WorkspaceID,
		pull.WithSweeperLogger(c.logger),
		pull.WithSweeperTracer(c.tracer),
	)
}

func (c *Container) retryPolicy() outbox.RetryPolicy {
	policy := outbox.DefaultRetryPolicy()
	if mode := outbox.RetryMode(c.config.Sync.RetryMode); mode.Valid() {
		policy.Mode = mode
	}
	if c.config.Sync.RetryBackoff > 0 {
		policy.BaseBackoff = c.config.Sync.RetryBackoff
	}
	return policy
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Queue returns the outbox queue repository.
func (c *Container) Queue() *sqlite.QueueRepository {
	return c.queueRepo
}

// Entities returns the hierarchy entity repository.
func (c *Container) Entities() *sqlite.EntityRepository {
	return c.entityRepo
}

// Mirror returns the mirror table repository.
func (c *Container) Mirror() *sqlite.MirrorRepository {
	return c.mirrorRepo
}

// Logs returns the sync audit log repository.
func (c *Container) Logs() *sqlite.LogRepository {
	return c.logRepo
}

// Manager returns the drain manager, or ErrNotConfigured when no API
// token is set.
func (c *Container) Manager() (*engine.Manager, error) {
	if c.manager == nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfig,
			"set remote.api_token in the config file", domainErrors.ErrNotConfigured)
	}
	return c.manager, nil
}

// Sweeper returns the mirror pull sweeper, or ErrNotConfigured when no
// API token is set.
func (c *Container) Sweeper() (*pull.Sweeper, error) {
	if c.sweeper == nil {
		return nil, domainErrors.NewError(domainErrors.CodeConfig,
			"set remote.api_token in the config file", domainErrors.ErrNotConfigured)
	}
	return c.sweeper, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.tracer != nil {
		_ = c.tracer.Shutdown(context.Background())
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
