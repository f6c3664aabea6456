package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/application/ports"
	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/domain/program"
	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// EnqueueResult holds the result of the enqueue command for JSON output.
type EnqueueResult struct {
	TaskID     string `json:"task_id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Operation  string `json:"operation"`
	Priority   int    `json:"priority"`
}

// NewEnqueueCmd creates the enqueue command.
func NewEnqueueCmd() *cobra.Command {
	var (
		operation string
		priority  int
	)

	cmd := &cobra.Command{
		Use:   "enqueue <entity-type> <entity-id>",
		Short: "Stage a local change for push",
		Long: `Stage a local entity change in the outbox queue.

Entity types: module, sub_program, component, activity, sub_activity,
checklist_batch, goal, indicator, comment, time_entry.

The task is pushed on the next drain, ordered by priority (1 is
highest, 5 is lowest).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(cmd.Context(), args[0], args[1], operation, priority)
		},
	}

	cmd.Flags().StringVar(&operation, "op", "create", "operation: create, update, delete")
	cmd.Flags().IntVar(&priority, "priority", 0, "task priority 1-5 (default 5)")

	return cmd
}

func runEnqueue(ctx context.Context, entityTypeArg, entityIDArg, operation string, priority int) error {
	formatter := GetFormatter()
	container := GetContainer()

	entityType, err := program.ParseEntityType(entityTypeArg)
	if err != nil {
		return err
	}

	entityID, err := strconv.ParseInt(entityIDArg, 10, 64)
	if err != nil || entityID <= 0 {
		return fmt.Errorf("invalid entity id %q", entityIDArg)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	task, err := container.Queue().Enqueue(ctx, ports.EnqueueRequest{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  outbox.Operation(operation),
		Priority:   outbox.Priority(priority),
	})
	if err != nil {
		return err
	}

	result := EnqueueResult{
		TaskID:     task.ID,
		EntityType: string(task.EntityType),
		EntityID:   task.EntityID,
		Operation:  string(task.Operation),
		Priority:   int(task.Priority),
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Success("Queued %s %s %d (task %s, priority %d)",
		result.Operation, result.EntityType, result.EntityID, result.TaskID, result.Priority)
	return nil
}
