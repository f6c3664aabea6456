package commands

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/application"
	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/infrastructure/config"
	"github.com/fieldstack/progsync/internal/infrastructure/watch"
)

// NewDaemonCmd creates the daemon command.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run periodic drains and pulls until interrupted",
		Long: `Run progsync as a long-lived process.

The daemon drains the outbox queue and refreshes the mirror tables on
the configured intervals, and reloads its configuration when the
config file changes. Stop with SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}

	return cmd
}

func runDaemon(ctx context.Context) error {
	formatter := GetFormatter()
	container := GetContainer()
	logger := container.Logger()
	cfg := container.Config()

	if _, err := container.Manager(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	drainTicker := time.NewTicker(cfg.Sync.DrainInterval)
	defer drainTicker.Stop()
	pullTicker := time.NewTicker(cfg.Sync.PullInterval)
	defer pullTicker.Stop()

	watcher, err := configWatcher(ctx)
	if err != nil {
		logger.Warn("config reload disabled", "error", err)
	} else {
		defer watcher.Close()
	}

	formatter.Info("Daemon started: drain every %s, pull every %s", cfg.Sync.DrainInterval, cfg.Sync.PullInterval)

	for {
		select {
		case <-ctx.Done():
			formatter.Info("Daemon stopping")
			return nil

		case <-drainTicker.C:
			daemonDrain(ctx, container)

		case <-pullTicker.C:
			daemonPull(ctx, container)

		case event, ok := <-watcherEvents(watcher):
			if !ok {
				continue
			}
			logger.Info("config file changed, reloading", "path", event.Path)
			newContainer, newCfg, err := reloadContainer()
			if err != nil {
				logger.Warn("config reload failed, keeping previous settings", "error", err)
				continue
			}
			container.Close()
			container = newContainer
			cfg = newCfg
			drainTicker.Reset(cfg.Sync.DrainInterval)
			pullTicker.Reset(cfg.Sync.PullInterval)
			logger = container.Logger()

		case err, ok := <-watcherErrors(watcher):
			if ok {
				logger.Warn("config watcher error", "error", err)
			}
		}
	}
}

func daemonDrain(ctx context.Context, container *application.Container) {
	logger := container.Logger()
	manager, err := container.Manager()
	if err != nil {
		logger.Warn("drain skipped", "error", err)
		return
	}
	if _, err := manager.Drain(ctx); err != nil && !errors.Is(err, domainErrors.ErrDrainInProgress) {
		logger.Error("drain failed", "error", err)
	}
}

func daemonPull(ctx context.Context, container *application.Container) {
	logger := container.Logger()
	sweeper, err := container.Sweeper()
	if err != nil {
		logger.Warn("pull skipped", "error", err)
		return
	}
	if _, err := sweeper.Run(ctx); err != nil {
		logger.Error("pull sweep failed", "error", err)
	}
}

// configWatcher watches the directory of the active config file.
func configWatcher(ctx context.Context) (*watch.Watcher, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, err
	}
	dir := loader.ConfigDir()
	if globalFlags.ConfigFile != "" {
		dir = filepath.Dir(globalFlags.ConfigFile)
	}

	watcher, err := watch.NewWatcher(watch.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(ctx, dir); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// watcherEvents tolerates a nil watcher so the daemon loop stays flat.
func watcherEvents(w *watch.Watcher) <-chan watch.Event {
	if w == nil {
		return nil
	}
	return w.Events()
}

func watcherErrors(w *watch.Watcher) <-chan error {
	if w == nil {
		return nil
	}
	return w.Errors()
}

// reloadContainer builds a fresh container from the on-disk config.
func reloadContainer() (*application.Container, *config.Config, error) {
	cfg, err := loadConfig(globalFlags.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return nil, nil, err
	}

	appCtxMu.Lock()
	if appCtx != nil {
		appCtx.Config = cfg
		appCtx.Container = container
	}
	appCtxMu.Unlock()

	return container, cfg, nil
}
