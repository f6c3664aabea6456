package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// StatusOutput holds the status summary for JSON output.
type StatusOutput struct {
	DatabasePath string         `json:"database_path"`
	RemoteURL    string         `json:"remote_url"`
	WorkspaceID  string         `json:"workspace_id,omitempty"`
	Configured   bool           `json:"configured"`
	PendingTasks int            `json:"pending_tasks"`
	MirrorCounts map[string]int `json:"mirror_counts"`
}

// mirrorTables are the tables the status command reports on.
var mirrorTables = []string{
	"remote_users",
	"remote_custom_fields",
	"remote_statuses",
	"remote_views",
	"remote_attachments",
	"remote_checklists",
	"remote_checklist_items",
	"remote_tags",
	"remote_task_tags",
	"remote_field_values",
	"remote_goals",
	"remote_key_results",
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync status and mirror table counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

func runStatus(ctx context.Context) error {
	formatter := GetFormatter()
	container := GetContainer()
	cfg := container.Config()

	if ctx == nil {
		ctx = context.Background()
	}

	pending, err := container.Queue().PendingCount(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(mirrorTables))
	for _, table := range mirrorTables {
		count, err := container.Mirror().Count(ctx, table)
		if err != nil {
			return err
		}
		counts[table] = count
	}

	_, managerErr := container.Manager()

	out := StatusOutput{
		DatabasePath: cfg.Database.Path,
		RemoteURL:    cfg.Remote.BaseURL,
		WorkspaceID:  cfg.Remote.WorkspaceID,
		Configured:   managerErr == nil,
		PendingTasks: pending,
		MirrorCounts: counts,
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}

	formatter.Header("Sync Status")
	formatter.Item("Database", out.DatabasePath)
	formatter.Item("Remote", out.RemoteURL)
	if out.WorkspaceID != "" {
		formatter.Item("Workspace", out.WorkspaceID)
	}
	if out.Configured {
		formatter.Item("Remote sync", "configured")
	} else {
		formatter.Item("Remote sync", "not configured (set remote.api_token)")
	}
	formatter.Item("Pending tasks", strconv.Itoa(out.PendingTasks))

	formatter.Println("")
	formatter.SubHeader("Mirror tables")
	for _, table := range mirrorTables {
		if counts[table] > 0 {
			formatter.Item(table, strconv.Itoa(counts[table]))
		}
	}
	return nil
}
