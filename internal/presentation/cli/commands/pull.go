package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldstack/progsync/internal/presentation/cli/output"
)

// PullOutput holds the result of a pull sweep for JSON output.
type PullOutput struct {
	Scopes   int    `json:"scopes"`
	Upserted int    `json:"upserted"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
}

// NewPullCmd creates the pull command.
func NewPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Refresh mirror tables from the remote workspace",
		Long: `Run one pull sweep over every synced module, component and activity.

Remote-owned collections (users, custom fields, statuses, views,
attachments, checklists, tags, goals) are upserted into the local
mirror tables. Pulls never delete local rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd.Context())
		},
	}

	return cmd
}

func runPull(ctx context.Context) error {
	formatter := GetFormatter()
	container := GetContainer()

	sweeper, err := container.Sweeper()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var spinner *output.Spinner
	if formatter.Format() != output.FormatJSON {
		spinner = output.NewSpinner("Refreshing mirror tables...")
		spinner.Start()
	}

	report, err := sweeper.Run(ctx)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Pull failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	out := PullOutput{
		Scopes:   report.Scopes,
		Upserted: report.Upserted,
		Skipped:  report.Skipped,
		Failed:   report.Failed,
		Duration: report.Duration.Round(time.Millisecond).String(),
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(out)
	}

	if out.Scopes == 0 {
		formatter.Info("Nothing has synced yet, no scopes to refresh")
		return nil
	}

	formatter.Success("Pull sweep finished in %s", out.Duration)
	formatter.Item("Scopes", strconv.Itoa(out.Scopes))
	formatter.Item("Upserted", strconv.Itoa(out.Upserted))
	formatter.Item("Skipped", strconv.Itoa(out.Skipped))
	formatter.Item("Failed", strconv.Itoa(out.Failed))
	return nil
}
