package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// LogRow holds one sync log entry for JSON output.
type LogRow struct {
	Timestamp  string `json:"timestamp"`
	Direction  string `json:"direction"`
	Operation  string `json:"operation"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

// NewLogCmd creates the log command.
func NewLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sync log entries",
		Long: `Show the most recent entries of the append-only sync log.

Every push attempt and pull run leaves one entry; nothing is ever
rewritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to show")

	return cmd
}

func runLog(ctx context.Context, limit int) error {
	formatter := GetFormatter()
	container := GetContainer()

	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := container.Logs().Recent(ctx, limit)
	if err != nil {
		return err
	}

	rows := make([]LogRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LogRow{
			Timestamp:  e.CreatedAt.Format(time.RFC3339),
			Direction:  string(e.Direction),
			Operation:  e.Operation,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Status:     string(e.Status),
			Message:    e.Message,
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(rows)
	}

	if len(rows) == 0 {
		formatter.Info("Sync log is empty")
		return nil
	}

	table := output.TableData{
		Columns: []output.TableColumn{
			{Header: "TIME"},
			{Header: "DIR"},
			{Header: "OP"},
			{Header: "ENTITY"},
			{Header: "ID", Align: output.AlignRight},
			{Header: "STATUS"},
			{Header: "MESSAGE"},
		},
	}
	for _, r := range rows {
		msg := r.Message
		if len(msg) > 60 {
			msg = msg[:57] + "..."
		}
		table.Rows = append(table.Rows, []string{
			r.Timestamp,
			r.Direction,
			r.Operation,
			r.EntityType,
			strconv.FormatInt(r.EntityID, 10),
			r.Status,
			msg,
		})
	}
	return formatter.Table(table)
}
