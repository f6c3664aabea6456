// Package logging provides structured logging infrastructure for the progsync engine.
// It wraps Go's standard log/slog package with context-aware logging, correlation IDs,
// and sync-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs.
	CorrelationIDKey contextKey = "correlation_id"
	// DrainIDKey is the context key for drain run IDs.
	DrainIDKey contextKey = "drain_id"
	// TaskIDKey is the context key for sync task IDs.
	TaskIDKey contextKey = "task_id"
	// EntityTypeKey is the context key for entity type names.
	EntityTypeKey contextKey = "entity_type"
	// EntityIDKey is the context key for local entity IDs.
	EntityIDKey contextKey = "entity_id"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for progsync.
type Logger struct {
	slogger *slog.Logger
	level   slog.Level
	mu      sync.RWMutex
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{
		slogger: slog.New(handler),
		level:   level,
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel dynamically changes the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = parseLevel(level)
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
		level:   l.level,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+10)

	// Extract standard context values
	if v := ctx.Value(CorrelationIDKey); v != nil {
		enriched = append(enriched, "correlation_id", v)
	}
	if v := ctx.Value(DrainIDKey); v != nil {
		enriched = append(enriched, "drain_id", v)
	}
	if v := ctx.Value(TaskIDKey); v != nil {
		enriched = append(enriched, "task_id", v)
	}
	if v := ctx.Value(EntityTypeKey); v != nil {
		enriched = append(enriched, "entity_type", v)
	}
	if v := ctx.Value(EntityIDKey); v != nil {
		enriched = append(enriched, "entity_id", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// Underlying returns the underlying slog.Logger.
func (l *Logger) Underlying() *slog.Logger {
	return l.slogger
}

// --- Context helpers ---

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithDrainID adds a drain run ID to the context.
func WithDrainID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DrainIDKey, id)
}

// WithTaskID adds a sync task ID to the context.
func WithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TaskIDKey, id)
}

// WithEntity adds the entity type and local id to the context.
func WithEntity(ctx context.Context, entityType string, entityID int64) context.Context {
	ctx = context.WithValue(ctx, EntityTypeKey, entityType)
	return context.WithValue(ctx, EntityIDKey, entityID)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// --- Domain-specific logging helpers ---

// LogDrainStart logs the start of a drain pass.
func LogDrainStart(ctx context.Context, logger *Logger, drainID string, batchSize int) {
	logger.InfoContext(ctx, "drain started",
		"drain_id", drainID,
		"batch_size", batchSize,
	)
}

// LogDrainComplete logs the completion of a drain pass.
func LogDrainComplete(ctx context.Context, logger *Logger, drainID string, processed, completed, failed int, duration time.Duration) {
	logger.InfoContext(ctx, "drain completed",
		"drain_id", drainID,
		"processed", processed,
		"completed", completed,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogTaskCompleted logs one successful push attempt.
func LogTaskCompleted(ctx context.Context, logger *Logger, taskID, remoteID string, duration time.Duration) {
	logger.InfoContext(ctx, "sync task completed",
		"task_id", taskID,
		"remote_id", remoteID,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogTaskFailed logs one failed push attempt.
func LogTaskFailed(ctx context.Context, logger *Logger, taskID string, retryCount int, err error) {
	logger.WarnContext(ctx, "sync task failed",
		"task_id", taskID,
		"retry_count", retryCount,
		"error", err,
	)
}

// LogPullComplete logs one pull agent run.
func LogPullComplete(ctx context.Context, logger *Logger, agent, scope string, upserted int, duration time.Duration) {
	logger.InfoContext(ctx, "pull completed",
		"agent", agent,
		"scope", scope,
		"upserted", upserted,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogPullSkipped logs a pull agent that found no remote collection.
func LogPullSkipped(ctx context.Context, logger *Logger, agent, scope string) {
	logger.WarnContext(ctx, "pull skipped, collection missing",
		"agent", agent,
		"scope", scope,
	)
}

// LogRemoteCall logs one outbound gateway call.
func LogRemoteCall(ctx context.Context, logger *Logger, method, path string, status int, latency time.Duration) {
	logger.DebugContext(ctx, "remote call",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}
