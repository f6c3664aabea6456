package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/domain/outbox"
	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// TaskRow holds one queue task for JSON output.
type TaskRow struct {
	ID         string `json:"id"`
	Operation  string `json:"operation"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Priority   int    `json:"priority"`
	Status     string `json:"status"`
	Retries    string `json:"retries"`
	LastError  string `json:"last_error,omitempty"`
}

// NewQueueCmd creates the queue command group.
func NewQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the outbox queue",
	}

	cmd.AddCommand(newQueueListCmd())
	cmd.AddCommand(newQueueRetryCmd())

	return cmd
}

func newQueueListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueList(cmd.Context(), status, limit)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "pending", "task status: pending, processing, completed, failed")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of tasks to show")

	return cmd
}

func runQueueList(ctx context.Context, status string, limit int) error {
	formatter := GetFormatter()
	container := GetContainer()

	if ctx == nil {
		ctx = context.Background()
	}

	tasks, err := container.Queue().List(ctx, outbox.Status(status), limit)
	if err != nil {
		return err
	}

	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, TaskRow{
			ID:         t.ID,
			Operation:  string(t.Operation),
			EntityType: string(t.EntityType),
			EntityID:   t.EntityID,
			Priority:   int(t.Priority),
			Status:     string(t.Status),
			Retries:    fmt.Sprintf("%d/%d", t.RetryCount, t.MaxRetries),
			LastError:  t.LastError,
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(rows)
	}

	if len(rows) == 0 {
		formatter.Info("No %s tasks", status)
		return nil
	}

	table := output.TableData{
		Columns: []output.TableColumn{
			{Header: "TASK"},
			{Header: "OP"},
			{Header: "ENTITY"},
			{Header: "ID", Align: output.AlignRight},
			{Header: "PRI", Align: output.AlignRight},
			{Header: "STATUS"},
			{Header: "RETRIES"},
		},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.ID,
			r.Operation,
			r.EntityType,
			strconv.FormatInt(r.EntityID, 10),
			strconv.Itoa(r.Priority),
			r.Status,
			r.Retries,
		})
	}
	return formatter.Table(table)
}

func newQueueRetryCmd() *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "retry <task-id>",
		Short: "Requeue a failed task",
		Long: `Return a failed task to pending so the next drain retries it.

A task that has burned its whole retry budget cannot be requeued.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueRetry(cmd.Context(), args[0], delay)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "delay before the task becomes eligible")

	return cmd
}

func runQueueRetry(ctx context.Context, taskID string, delay time.Duration) error {
	formatter := GetFormatter()
	container := GetContainer()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := container.Queue().Requeue(ctx, taskID, int(delay.Seconds())); err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(map[string]string{"task_id": taskID, "status": "pending"})
	}

	if delay > 0 {
		formatter.Success("Task %s requeued, eligible in %s", taskID, delay)
	} else {
		formatter.Success("Task %s requeued", taskID)
	}
	return nil
}
